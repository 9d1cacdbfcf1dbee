package store

import (
	"context"
	"time"
)

// Repo defines storage operations for unlock events and consent records.
type Repo interface {
	RecordUnlock(ctx context.Context, caller string, at time.Time) error
	RecentUnlocks(ctx context.Context, limit int) ([]UnlockEvent, error)
	GetOptIn(ctx context.Context, phone string) (*OptIn, error)
	OptInStatus(ctx context.Context, phone string) (string, error)
	SetOptIn(ctx context.Context, phone, source string, at time.Time) error
	SetOptOut(ctx context.Context, phone, source string, at time.Time) error
	Close() error
}
