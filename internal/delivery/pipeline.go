// Package delivery implements the coin-gated delivery workflow: membership
// check, balance debit, script lookup, staging and transport hand-off. The
// two external collaborators cannot participate in a database transaction,
// so correctness rests on strict stage ordering plus an explicit refund
// whenever a committed debit is followed by a failure.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/velizhanin/scriptshop/internal/logger"
	"github.com/velizhanin/scriptshop/internal/queue"
	"github.com/velizhanin/scriptshop/internal/repository"
)

// Stage identifies how far a delivery attempt progressed. A failed attempt
// reports the stage that failed so callers can tell "never charged" from
// "charged and refunded" from "charged, refund failed".
type Stage string

const (
	StageMembershipCheck Stage = "membership_check"
	StageDebit           Stage = "debit"
	StageLookup          Stage = "lookup"
	StageStaging         Stage = "staging"
	StageTransport       Stage = "transport"
	StageDone            Stage = "done"
)

// Terminal failure kinds. ErrInsufficientBalance and ErrScriptNotFound are
// shared with the repository layer so handlers match one value everywhere.
var (
	ErrNotAMember             = errors.New("not a channel member")
	ErrInsufficientBalance    = repository.ErrInsufficientBalance
	ErrScriptNotFound         = repository.ErrScriptNotFound
	ErrStagingFailed          = errors.New("staging failed")
	ErrDeliveryFailed         = errors.New("delivery failed")
	ErrReconciliationRequired = errors.New("reconciliation required: refund failed")
)

// Result is the terminal outcome of one delivery attempt.
type Result struct {
	Stage    Stage // stage reached; the failed stage when Err != nil
	Refunded bool  // true when a committed debit was credited back
	Err      error // nil on success, otherwise one of the kinds above
}

// MembershipOracle answers whether a user belongs to the gating channel.
type MembershipOracle interface {
	IsChannelMember(ctx context.Context, userID string) (bool, error)
}

// BalanceStore is the slice of the user repository the pipeline needs.
type BalanceStore interface {
	Credit(ctx context.Context, userID string, amount int64) (int64, error)
	Debit(ctx context.Context, userID string, amount int64) (int64, error)
}

// Inventory is the slice of the script repository the pipeline needs.
type Inventory interface {
	GetEnabledByID(ctx context.Context, id uint64) (repository.Script, error)
	IncrementDownloads(ctx context.Context, id uint64) error
}

// Stager materializes content as a scratch file prior to transport.
type Stager interface {
	Stage(filename string, content []byte) (string, error)
	Remove(path string) error
}

// Transport pushes a staged file to a user out of band.
type Transport interface {
	SendDocument(ctx context.Context, userID, path, filename string) error
}

// EventPublisher emits domain events to the message broker. Completed
// events are best-effort; reconciliation events are the loud path for
// money the system owes a user.
type EventPublisher interface {
	PublishDeliveryCompleted(ctx context.Context, ev queue.DeliveryCompletedEvent) error
	PublishReconciliationRequired(ctx context.Context, ev queue.ReconciliationEvent) error
}

// Pipeline sequences one delivery attempt. It owns no persistent state;
// concurrent attempts are independent and only serialize on the atomic
// balance mutations inside the store.
type Pipeline struct {
	oracle    MembershipOracle
	balances  BalanceStore
	inventory Inventory
	stager    Stager
	transport Transport
	events    EventPublisher
	log       *logger.Logger
	price     int64
	timeout   time.Duration // bound on each external call
}

// New constructs a Pipeline. price is the fixed per-delivery cost in coins.
func New(oracle MembershipOracle, balances BalanceStore, inventory Inventory,
	stager Stager, transport Transport, events EventPublisher,
	log *logger.Logger, price int64, timeout time.Duration) *Pipeline {
	return &Pipeline{
		oracle:    oracle,
		balances:  balances,
		inventory: inventory,
		stager:    stager,
		transport: transport,
		events:    events,
		log:       log,
		price:     price,
		timeout:   timeout,
	}
}

// Deliver runs the five stages in order for one (user, script) request and
// returns the terminal outcome. After the debit commits, every failure path
// goes through refund before returning.
func (p *Pipeline) Deliver(ctx context.Context, userID string, scriptID uint64) Result {
	// 1. MembershipCheck: no side effects performed yet, so oracle errors
	// and non-membership both terminate without compensation.
	octx, cancel := context.WithTimeout(ctx, p.timeout)
	member, err := p.oracle.IsChannelMember(octx, userID)
	cancel()
	if err != nil {
		p.log.Warn("membership check failed", "user_id", userID, "error", err)
		return Result{Stage: StageMembershipCheck, Err: ErrNotAMember}
	}
	if !member {
		return Result{Stage: StageMembershipCheck, Err: ErrNotAMember}
	}

	// 2. BalanceCheck+Debit: from here on the debit is committed and must
	// be refunded on any later failure.
	if _, err := p.balances.Debit(ctx, userID, p.price); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return Result{Stage: StageDebit, Err: ErrInsufficientBalance}
		}
		p.log.Error("debit failed", "user_id", userID, "error", err)
		return Result{Stage: StageDebit, Err: fmt.Errorf("debit: %w", err)}
	}

	// 3. Lookup: absent and disabled scripts look the same to the caller.
	script, err := p.inventory.GetEnabledByID(ctx, scriptID)
	if err != nil {
		refunded, rerr := p.refund(ctx, userID, scriptID, StageLookup)
		if rerr != nil {
			return Result{Stage: StageLookup, Err: ErrReconciliationRequired}
		}
		if errors.Is(err, repository.ErrScriptNotFound) {
			return Result{Stage: StageLookup, Refunded: refunded, Err: ErrScriptNotFound}
		}
		return Result{Stage: StageLookup, Refunded: refunded, Err: fmt.Errorf("lookup: %w", err)}
	}

	// 4. Stage: write the payload under a per-attempt unique name.
	path, err := p.stager.Stage(script.Filename, []byte(script.Content))
	if err != nil {
		refunded, rerr := p.refund(ctx, userID, scriptID, StageStaging)
		if rerr != nil {
			return Result{Stage: StageStaging, Err: ErrReconciliationRequired}
		}
		p.log.Error("staging failed", "user_id", userID, "script_id", scriptID, "error", err)
		return Result{Stage: StageStaging, Refunded: refunded, Err: ErrStagingFailed}
	}

	// 5. Deliver+Cleanup.
	tctx, cancel := context.WithTimeout(ctx, p.timeout)
	err = p.transport.SendDocument(tctx, userID, path, script.Filename)
	cancel()
	if err != nil {
		p.log.Warn("transport send failed", "user_id", userID, "script_id", scriptID, "error", err)
		refunded, rerr := p.refund(ctx, userID, scriptID, StageTransport)
		if cerr := p.stager.Remove(path); cerr != nil {
			p.log.Warn("staged file cleanup failed", "path", path, "error", cerr)
		}
		if rerr != nil {
			return Result{Stage: StageTransport, Err: ErrReconciliationRequired}
		}
		return Result{Stage: StageTransport, Refunded: refunded, Err: ErrDeliveryFailed}
	}

	// Success: cleanup and the counter bump are best-effort. Counter drift
	// after a crash is tolerated; the counter is advisory. The calls run on
	// a context detached from request cancellation: delivery already
	// happened, so a client disconnect must not skip the bookkeeping.
	dctx, cancel := p.detached(ctx)
	defer cancel()
	if err := p.stager.Remove(path); err != nil {
		p.log.Warn("staged file cleanup failed", "path", path, "error", err)
	}
	if err := p.inventory.IncrementDownloads(dctx, scriptID); err != nil {
		p.log.Warn("download counter increment failed", "script_id", scriptID, "error", err)
	}
	if p.events != nil {
		ev := queue.DeliveryCompletedEvent{
			UserID:      userID,
			ScriptID:    scriptID,
			ScriptName:  script.Name,
			Filename:    script.Filename,
			Price:       p.price,
			DeliveredAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := p.events.PublishDeliveryCompleted(dctx, ev); err != nil {
			p.log.Warn("delivery event publish failed", "user_id", userID, "error", err)
		}
	}
	return Result{Stage: StageDone}
}

// detached derives a bounded context that survives cancellation of the
// inbound request. Compensation and post-delivery bookkeeping must not die
// with a disconnecting client.
func (p *Pipeline) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
}

// refund credits the price back after a post-debit failure. It runs on a
// detached context: the debit is already committed, so the refund must go
// through even when the request that triggered it was cancelled mid-flight.
// A refund failure is never swallowed: it is logged at error level and
// published as a reconciliation event, and the returned error marks the
// attempt as owing the user money.
func (p *Pipeline) refund(ctx context.Context, userID string, scriptID uint64, failed Stage) (bool, error) {
	ctx, cancel := p.detached(ctx)
	defer cancel()
	if _, err := p.balances.Credit(ctx, userID, p.price); err != nil {
		p.log.Error("refund failed, reconciliation required",
			"user_id", userID, "script_id", scriptID, "stage", string(failed), "amount", p.price, "error", err)
		if p.events != nil {
			ev := queue.ReconciliationEvent{
				UserID:     userID,
				ScriptID:   scriptID,
				Amount:     p.price,
				Stage:      string(failed),
				Reason:     err.Error(),
				OccurredAt: time.Now().UTC().Format(time.RFC3339),
			}
			if perr := p.events.PublishReconciliationRequired(ctx, ev); perr != nil {
				p.log.Error("reconciliation event publish failed", "user_id", userID, "error", perr)
			}
		}
		return false, err
	}
	return true, nil
}
