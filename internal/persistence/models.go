package persistence

import "time"

// Slot represents one dated calendar entry of a given kind, as persisted.
//
// (TenantID, Date, Kind) is unique; the backing store enforces this natively.
// ID is a stable internal identifier; callers address slots by their formatted
// label, which is only a presentation/search key.
type Slot struct {
	ID         string
	TenantID   string
	Date       time.Time
	Kind       string
	Label      string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ScheduleConfig holds the per-tenant summary rendering configuration.
// Absence of a record disables summary rendering for that tenant; an empty
// BriefingSource disables briefing matching only.
type ScheduleConfig struct {
	TenantID       string
	SummaryChannel string
	SummaryMessage string
	BriefingSource string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
