package application

import (
	"time"

	"github.com/example/rotation-scheduler/internal/recurrence"
)

// Slot is one dated calendar entry of a given kind as seen by the services.
type Slot struct {
	ID         string
	TenantID   string
	Date       time.Time
	Kind       recurrence.Kind
	Label      string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filled reports whether a human has attached details to the slot.
func (s Slot) Filled() bool {
	return s.Label != ""
}

// ScheduleConfig is the per-tenant summary rendering configuration.
type ScheduleConfig struct {
	TenantID       string
	SummaryChannel string
	SummaryMessage string
	BriefingSource string
}

// SlotOption pairs a slot with its user-addressable display string, as used in
// selection menus and search results.
type SlotOption struct {
	Slot    Slot
	Display string
}

// CoverageResult summarises one coverage pass of the rolling window.
type CoverageResult struct {
	Created      int
	Skipped      int
	Total        int
	TouchedDates []time.Time
}

// SummaryEntry is one rendered slot inside a week section. BriefingTitle is a
// reference to an externally authored document title, present only when the
// matcher found one.
type SummaryEntry struct {
	Slot          Slot
	Label         string
	BriefingTitle string
}

// WeekSection groups the entries of one ISO calendar week.
type WeekSection struct {
	ISOYear int
	ISOWeek int
	Start   time.Time
	Current bool
	Entries []SummaryEntry
}

// SummaryDocument is the assembled schedule summary. The caller is
// responsible for publishing it; the core only constructs it.
//
// Partial is set when the briefing source could not be consulted; the slots
// are then rendered without links rather than failing the build.
type SummaryDocument struct {
	TenantID    string
	Title       string
	GeneratedAt time.Time
	Editors     []string
	Instructors []string
	Weeks       []WeekSection
	Partial     bool
}
