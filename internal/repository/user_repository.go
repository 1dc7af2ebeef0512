package repository

import (
	"context"
	"database/sql"
	"time"
)

// User mirrors the 'users' table. TelegramID is the external messenger
// identity and the primary key; Coins is the authoritative balance.
type User struct {
	TelegramID string
	Coins      int64
	JoinDate   time.Time
}

// UserRepo encapsulates balance persistence. Every mutation is a single SQL
// statement so concurrent credits and debits on the same user serialize on
// the row lock instead of racing through a read-then-write pair.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo given a DB handle.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Credit atomically adds amount to the user's balance, creating the row with
// coins = amount (and join_date = now) when the user has never been seen.
// It returns the balance after the mutation.
func (r *UserRepo) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	const q = `INSERT INTO users (telegram_id, coins) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE coins = coins + VALUES(coins)`
	if _, err := r.db.ExecContext(ctx, q, userID, amount); err != nil {
		return 0, err
	}
	return r.Balance(ctx, userID)
}

// Debit atomically subtracts amount from the user's balance, but only when
// the current balance covers it. The guard lives in the WHERE clause, so a
// concurrent debit can never drive the balance negative: zero rows affected
// means the user is unknown or underfunded, and both map to
// ErrInsufficientBalance per the zero-default policy.
func (r *UserRepo) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	const q = `UPDATE users SET coins = coins - ? WHERE telegram_id = ? AND coins >= ?`
	res, err := r.db.ExecContext(ctx, q, amount, userID, amount)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrInsufficientBalance
	}
	return r.Balance(ctx, userID)
}

// Balance returns the user's current balance. Unknown users read as zero and
// no row is created; balance queries stay side-effect-free.
func (r *UserRepo) Balance(ctx context.Context, userID string) (int64, error) {
	var coins int64
	err := r.db.QueryRowContext(ctx,
		`SELECT coins FROM users WHERE telegram_id = ?`, userID).Scan(&coins)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return coins, nil
}

// Count returns the number of known users, for admin stats.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
