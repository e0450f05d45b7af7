package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/rotation-scheduler/internal/matching"
	"github.com/example/rotation-scheduler/internal/recurrence"
)

const (
	// summaryPastWeeks/summaryFutureWeeks bound the display window.
	summaryPastWeeks   = 2
	summaryFutureWeeks = 4
	// defaultMatchDeadline bounds each briefing-title match, title fetch
	// included.
	defaultMatchDeadline = 5 * time.Second
	// weekCutoffHour: the current week advances at Sunday 20:00 in the
	// reference zone, not at midnight Monday.
	weekCutoffHour = 20
)

// SummaryService assembles the weekly summary document: the display window's
// slots grouped into ISO-week sections, filled slots enriched with matched
// briefing titles.
type SummaryService struct {
	slots         SlotStore
	configs       ConfigStore
	titles        TitleSource
	matcher       *matching.Matcher
	matchDeadline time.Duration
	referenceZone *time.Location
	now           func() time.Time
	logger        *slog.Logger
}

// NewSummaryService wires dependencies for summary building. A nil zone
// defaults to UTC, a zero deadline to 5 seconds.
func NewSummaryService(slots SlotStore, configs ConfigStore, titles TitleSource, matcher *matching.Matcher, matchDeadline time.Duration, referenceZone *time.Location, now func() time.Time, logger *slog.Logger) *SummaryService {
	if matchDeadline <= 0 {
		matchDeadline = defaultMatchDeadline
	}
	if referenceZone == nil {
		referenceZone = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &SummaryService{
		slots:         slots,
		configs:       configs,
		titles:        titles,
		matcher:       matcher,
		matchDeadline: matchDeadline,
		referenceZone: referenceZone,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

// BuildSummary assembles the summary document for a tenant. A tenant without
// schedule configuration gets ErrSummaryNotConfigured. A failing briefing
// source degrades to unlinked entries with Partial set, never to a hard
// failure.
func (s *SummaryService) BuildSummary(ctx context.Context, tenantID string) (SummaryDocument, error) {
	if s == nil || s.slots == nil || s.configs == nil {
		return SummaryDocument{}, fmt.Errorf("summary dependencies not configured")
	}

	config, err := s.configs.GetScheduleConfig(ctx, tenantID)
	if err != nil {
		if isNotFound(err) {
			return SummaryDocument{}, fmt.Errorf("tenant %s: %w", tenantID, ErrSummaryNotConfigured)
		}
		return SummaryDocument{}, fmt.Errorf("load schedule config: %w", err)
	}

	now := s.now()
	today := recurrence.DateOnly(now)
	from := today.AddDate(0, 0, -7*summaryPastWeeks)
	to := today.AddDate(0, 0, 7*summaryFutureWeeks)
	slots, err := s.slots.QueryRange(ctx, tenantID, from, to)
	if err != nil {
		return SummaryDocument{}, fmt.Errorf("query display window: %w", err)
	}

	logger := serviceLogger(ctx, s.logger, "summary", "build_summary", "tenant_id", tenantID)

	document := SummaryDocument{
		TenantID:    tenantID,
		Title:       fmt.Sprintf("Schedule (Next %d Weeks)", summaryPastWeeks+summaryFutureWeeks),
		GeneratedAt: now,
	}

	titles, partial := s.fetchTitles(ctx, logger, config)
	document.Partial = partial

	currentStart := currentWeekStart(now, s.referenceZone)

	sections := make(map[int]*WeekSection)
	var order []int
	for _, slot := range slots {
		entry := SummaryEntry{
			Slot:  slot,
			Label: FormatLabel(slot.Date, slot.Kind),
		}
		if slot.Filled() && len(titles) > 0 {
			entry.BriefingTitle = s.matchTitle(ctx, slot.Label, titles)
		}

		isoYear, isoWeek := slot.Date.ISOWeek()
		key := isoYear*100 + isoWeek
		section, ok := sections[key]
		if !ok {
			start := isoWeekStart(slot.Date)
			section = &WeekSection{
				ISOYear: isoYear,
				ISOWeek: isoWeek,
				Start:   start,
				Current: start.Equal(currentStart),
			}
			sections[key] = section
			order = append(order, key)
		}
		section.Entries = append(section.Entries, entry)
	}

	sort.Ints(order)
	for _, key := range order {
		document.Weeks = append(document.Weeks, *sections[key])
	}

	document.Editors, document.Instructors = rosters(slots)

	logger.InfoContext(ctx, "summary built",
		"weeks", len(document.Weeks),
		"slots", len(slots),
		"partial", document.Partial)
	return document, nil
}

// fetchTitles lists the briefing source's candidate titles under the match
// deadline. No configured source means no titles and no partial flag; a fetch
// failure means no titles with the partial flag raised.
func (s *SummaryService) fetchTitles(ctx context.Context, logger *slog.Logger, config ScheduleConfig) ([]string, bool) {
	if config.BriefingSource == "" || s.titles == nil {
		return nil, false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.matchDeadline)
	defer cancel()

	titles, err := s.titles.ListTitles(fetchCtx, config.BriefingSource)
	if err != nil {
		logger.WarnContext(ctx, "briefing source unavailable, rendering unlinked",
			"briefing_source", config.BriefingSource,
			"error", err)
		return nil, true
	}
	return titles, false
}

func (s *SummaryService) matchTitle(ctx context.Context, label string, titles []string) string {
	if s.matcher == nil {
		return ""
	}
	matchCtx, cancel := context.WithTimeout(ctx, s.matchDeadline)
	defer cancel()

	title, ok := s.matcher.Match(matchCtx, label, titles)
	if !ok {
		return ""
	}
	return title
}

// rosters derives the distinct sorted editor and instructor name sets from
// filled slots: Mission authors edit, Training authors instruct.
func rosters(slots []Slot) (editors, instructors []string) {
	editorSet := make(map[string]struct{})
	instructorSet := make(map[string]struct{})
	for _, slot := range slots {
		if !slot.Filled() || slot.AuthorName == "" {
			continue
		}
		switch slot.Kind {
		case recurrence.KindMission:
			editorSet[slot.AuthorName] = struct{}{}
		case recurrence.KindTraining:
			instructorSet[slot.AuthorName] = struct{}{}
		}
	}
	return sortedNames(editorSet), sortedNames(instructorSet)
}

func sortedNames(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// currentWeekStart returns the Monday (midnight UTC, date only) of the week
// considered current: the calendar week of now in the reference zone, rolled
// forward once now reaches Sunday at the cutoff hour.
func currentWeekStart(now time.Time, zone *time.Location) time.Time {
	local := now.In(zone)
	start := isoWeekStart(recurrence.DateOnly(local))
	if local.Weekday() == time.Sunday && local.Hour() >= weekCutoffHour {
		start = start.AddDate(0, 0, 7)
	}
	return start
}

// isoWeekStart returns the Monday of the ISO week containing date, as a
// date-only UTC value.
func isoWeekStart(date time.Time) time.Time {
	date = recurrence.DateOnly(date)
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset)
}
