package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// RecordUnlock appends one gate unlock event.
func (r *SQLiteRepo) RecordUnlock(ctx context.Context, caller string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO unlock_events (caller, occurred_at) VALUES (?, ?)`,
		caller, at.UTC().Unix(),
	)
	return err
}

// RecentUnlocks returns up to `limit` events, newest first.
func (r *SQLiteRepo) RecentUnlocks(ctx context.Context, limit int) ([]UnlockEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, caller, occurred_at
		FROM unlock_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []UnlockEvent
	for rows.Next() {
		var (
			ev UnlockEvent
			at int64
		)
		if err := rows.Scan(&ev.ID, &ev.Caller, &at); err != nil {
			return nil, err
		}
		ev.OccurredAt = time.Unix(at, 0).UTC()
		res = append(res, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// GetOptIn returns the consent record for a phone number, or nil if the
// number has never been tracked.
func (r *SQLiteRepo) GetOptIn(ctx context.Context, phone string) (*OptIn, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT phone, status, source, opted_in_at, opted_out_at
		FROM opt_ins
		WHERE phone = ?`,
		phone,
	)

	var (
		rec   OptIn
		inNS  sql.NullInt64
		outNS sql.NullInt64
	)
	if err := row.Scan(&rec.Phone, &rec.Status, &rec.Source, &inNS, &outNS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.OptedInAt = fromNullInt64(inNS)
	rec.OptedOutAt = fromNullInt64(outNS)
	return &rec, nil
}

// OptInStatus returns the status for a phone number, or "" if untracked.
func (r *SQLiteRepo) OptInStatus(ctx context.Context, phone string) (string, error) {
	rec, err := r.GetOptIn(ctx, phone)
	if err != nil || rec == nil {
		return "", err
	}
	return rec.Status, nil
}

// SetOptIn records an opt-in event for a phone number.
func (r *SQLiteRepo) SetOptIn(ctx context.Context, phone, source string, at time.Time) error {
	ts := at.UTC().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO opt_ins (phone, status, source, opted_in_at, opted_out_at)
		VALUES (?, ?, ?, ?, NULL)
		ON CONFLICT(phone) DO UPDATE SET
			status       = excluded.status,
			source       = excluded.source,
			opted_in_at  = excluded.opted_in_at,
			opted_out_at = NULL`,
		phone, StatusOptedIn, source, ts,
	)
	return err
}

// SetOptOut records an opt-out event. The original opt-in timestamp is
// preserved.
func (r *SQLiteRepo) SetOptOut(ctx context.Context, phone, source string, at time.Time) error {
	ts := at.UTC().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO opt_ins (phone, status, source, opted_in_at, opted_out_at)
		VALUES (?, ?, ?, NULL, ?)
		ON CONFLICT(phone) DO UPDATE SET
			status       = excluded.status,
			source       = excluded.source,
			opted_out_at = excluded.opted_out_at`,
		phone, StatusOptedOut, source, ts,
	)
	return err
}
