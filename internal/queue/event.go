// Package queue defines message payloads exchanged over the message broker.
package queue

// DeliveryCompletedEvent is published when a gated delivery reaches terminal
// success. It carries enough information for downstream consumers to log or
// trigger analytics without querying the primary database.
type DeliveryCompletedEvent struct {
	UserID      string `json:"user_id"`
	ScriptID    uint64 `json:"script_id"`
	ScriptName  string `json:"script_name"`
	Filename    string `json:"filename"`
	Price       int64  `json:"price"`
	DeliveredAt string `json:"delivered_at"`
}

// ReconciliationEvent is published when a refund after a failed delivery
// could not be applied. It represents money the system owes a user and must
// be consumed by an operator-facing channel, never dropped silently.
type ReconciliationEvent struct {
	UserID     string `json:"user_id"`
	ScriptID   uint64 `json:"script_id"`
	Amount     int64  `json:"amount"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
	OccurredAt string `json:"occurred_at"`
}
