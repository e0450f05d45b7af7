package persistence

import (
	"context"
	"time"
)

// SlotRepository exposes the slot operations the core depends on. The backing
// store upholds the (tenant, date, kind) uniqueness invariant itself; callers
// never re-check it.
type SlotRepository interface {
	// UpsertIfAbsent inserts the slot unless a row with the same
	// (tenant, date, kind) key already exists. It reports whether a row was
	// inserted; an existing row, filled or not, is left untouched.
	UpsertIfAbsent(ctx context.Context, slot Slot) (bool, error)
	// Get retrieves the slot for the exact (tenant, date, kind) key.
	Get(ctx context.Context, tenantID string, date time.Time, kind string) (Slot, error)
	// SetLabel updates the editable fields of an existing slot. A missing
	// slot yields ErrNotFound; slots are never created implicitly.
	SetLabel(ctx context.Context, tenantID string, date time.Time, kind, label, authorID, authorName string) (Slot, error)
	// QueryRange lists the tenant's slots with date in [from, to], ordered by
	// date ascending then kind.
	QueryRange(ctx context.Context, tenantID string, from, to time.Time) ([]Slot, error)
}

// ScheduleConfigRepository exposes read/write access to per-tenant summary
// configuration. The core only reads; writes exist for administration.
type ScheduleConfigRepository interface {
	GetScheduleConfig(ctx context.Context, tenantID string) (ScheduleConfig, error)
	PutScheduleConfig(ctx context.Context, config ScheduleConfig) error
}
