package store

import (
	"database/sql"
	"time"
)

// Opt-in statuses for a notification number.
const (
	StatusOptedIn  = "opted_in"
	StatusOptedOut = "opted_out"
)

// UnlockEvent is one recorded gate unlock.
type UnlockEvent struct {
	ID         int64
	Caller     string
	OccurredAt time.Time // UTC
}

// OptIn is the durable consent record for one phone number. Opt-out
// preserves the original opt-in timestamp for auditability.
type OptIn struct {
	Phone      string
	Status     string
	Source     string
	OptedInAt  *time.Time // UTC, nullable
	OptedOutAt *time.Time // UTC, nullable
}

func toNullInt64(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func fromNullInt64(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := time.Unix(ns.Int64, 0).UTC()
	return &t
}
