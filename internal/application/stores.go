package application

import (
	"context"
	"time"

	"github.com/example/rotation-scheduler/internal/recurrence"
)

// SlotStore captures the persistence interactions the services need. The
// backing store enforces the (tenant, date, kind) uniqueness invariant
// natively.
type SlotStore interface {
	// UpsertIfAbsent inserts the slot unless its key exists, reporting
	// whether a row was inserted. Racing duplicate inserts are absorbed as
	// "already present", never surfaced as errors.
	UpsertIfAbsent(ctx context.Context, slot Slot) (bool, error)
	// Get retrieves the slot for an exact (tenant, date, kind) key.
	Get(ctx context.Context, tenantID string, date time.Time, kind recurrence.Kind) (Slot, error)
	// SetLabel fills an existing slot's editable fields; a missing key is
	// ErrNotFound, never an implicit create.
	SetLabel(ctx context.Context, tenantID string, date time.Time, kind recurrence.Kind, label, authorID, authorName string) (Slot, error)
	// QueryRange lists slots with date in [from, to] ordered by date then
	// kind.
	QueryRange(ctx context.Context, tenantID string, from, to time.Time) ([]Slot, error)
}

// ConfigStore exposes read-only access to per-tenant summary configuration.
// A missing record is reported as ErrNotFound.
type ConfigStore interface {
	GetScheduleConfig(ctx context.Context, tenantID string) (ScheduleConfig, error)
}

// TitleSource lists the current candidate document titles of a briefing
// source. It may be slow or unavailable; callers bound it with a deadline and
// degrade gracefully.
type TitleSource interface {
	ListTitles(ctx context.Context, source string) ([]string, error)
}

// Publisher performs the external edit/post of a built summary document.
type Publisher interface {
	PublishSummary(ctx context.Context, config ScheduleConfig, document SummaryDocument) error
}

// SummaryRefresher regenerates and republishes a tenant's summary. Writers
// call it best-effort after changing slot data.
type SummaryRefresher interface {
	Refresh(ctx context.Context, tenantID string) error
}
