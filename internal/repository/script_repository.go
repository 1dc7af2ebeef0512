package repository

import (
	"context"
	"database/sql"
	"time"
)

// Script mirrors the 'scripts' table. Content carries the full text payload
// handed to users; Downloads is an advisory counter, not an accounting one.
type Script struct {
	ID          uint64
	Name        string
	Filename    string
	Description string
	Content     string
	Enabled     bool
	Downloads   uint64
	CreatedAt   time.Time
}

const scriptColumns = `id, name, filename, description, content, enabled, downloads, created_at`

// ScriptRepo encapsulates database operations for scripts.
type ScriptRepo struct {
	db *sql.DB
}

// NewScriptRepo constructs a ScriptRepo given a DB handle.
func NewScriptRepo(db *sql.DB) *ScriptRepo { return &ScriptRepo{db: db} }

// Create inserts a script and populates its generated ID.
func (r *ScriptRepo) Create(ctx context.Context, s *Script) error {
	const q = `INSERT INTO scripts (name, filename, description, content, enabled) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Filename, s.Description, s.Content, s.Enabled)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Update replaces the display metadata and content of an existing script.
// The enabled flag and the downloads counter are managed separately.
func (r *ScriptRepo) Update(ctx context.Context, s *Script) error {
	const q = `UPDATE scripts SET name = ?, filename = ?, description = ?, content = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Filename, s.Description, s.Content, s.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a script by id.
func (r *ScriptRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scripts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetByID fetches a script regardless of its enabled flag.
func (r *ScriptRepo) GetByID(ctx context.Context, id uint64) (Script, error) {
	return r.getWhere(ctx, `WHERE id = ?`, id)
}

// GetEnabledByID fetches a script only when it is enabled. Disabled scripts
// are invisible to download and delivery, so absence and disablement report
// the same ErrScriptNotFound.
func (r *ScriptRepo) GetEnabledByID(ctx context.Context, id uint64) (Script, error) {
	return r.getWhere(ctx, `WHERE id = ? AND enabled = TRUE`, id)
}

func (r *ScriptRepo) getWhere(ctx context.Context, where string, args ...any) (Script, error) {
	var s Script
	err := r.db.QueryRowContext(ctx,
		`SELECT `+scriptColumns+` FROM scripts `+where+` LIMIT 1`, args...).
		Scan(&s.ID, &s.Name, &s.Filename, &s.Description, &s.Content, &s.Enabled, &s.Downloads, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return Script{}, ErrScriptNotFound
	}
	if err != nil {
		return Script{}, err
	}
	return s, nil
}

// List returns scripts in insertion order. When enabledOnly is true,
// disabled scripts are filtered out.
func (r *ScriptRepo) List(ctx context.Context, enabledOnly bool) ([]Script, error) {
	q := `SELECT ` + scriptColumns + ` FROM scripts`
	if enabledOnly {
		q += ` WHERE enabled = TRUE`
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]Script, 0)
	for rows.Next() {
		var s Script
		if err := rows.Scan(&s.ID, &s.Name, &s.Filename, &s.Description, &s.Content, &s.Enabled, &s.Downloads, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// SetEnabled toggles the visibility of a script.
func (r *ScriptRepo) SetEnabled(ctx context.Context, id uint64, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE scripts SET enabled = ? WHERE id = ?`, enabled, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// IncrementDownloads bumps the advisory download counter by one.
func (r *ScriptRepo) IncrementDownloads(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE scripts SET downloads = downloads + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Count returns the number of scripts, for admin stats.
func (r *ScriptRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scripts`).Scan(&n)
	return n, err
}

// TotalDownloads sums the download counters across all scripts. The total is
// derived at read time so no shared in-process counter exists.
func (r *ScriptRepo) TotalDownloads(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(downloads), 0) FROM scripts`).Scan(&n)
	return n, err
}

// requireRow converts a zero-rows-affected result into ErrScriptNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScriptNotFound
	}
	return nil
}
