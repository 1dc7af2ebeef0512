package repository

import (
	"context"
	"database/sql"
)

// AdminRepo answers the single authorization question the admin surface has:
// is this caller id present in the persisted admin set. There are no roles
// and no expiry; swapping in a real auth scheme only needs to replace this
// check behind the same method.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo constructs an AdminRepo given a DB handle.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

// IsAuthorized reports whether callerID belongs to the admin set.
func (r *AdminRepo) IsAuthorized(ctx context.Context, callerID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM admins WHERE telegram_id = ? LIMIT 1`, callerID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add inserts a caller id into the admin set. Inserting an existing id is a
// no-op rather than an error.
func (r *AdminRepo) Add(ctx context.Context, callerID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO admins (telegram_id) VALUES (?)`, callerID)
	return err
}
