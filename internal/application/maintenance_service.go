package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/rotation-scheduler/internal/recurrence"
)

// maxCoverageWeeks bounds per-call window overrides on EnsureCoverage.
const maxCoverageWeeks = 52

// MaintenanceService keeps the rolling window of slots populated for each
// tenant. Coverage is idempotent: existing slots, filled or empty, are never
// touched.
type MaintenanceService struct {
	slots       SlotStore
	patterns    recurrence.PatternSet
	pastWeeks   int
	futureWeeks int
	refresher   SummaryRefresher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMaintenanceService wires dependencies for window maintenance. Week
// counts at or below zero fall back to the default 4/4 window.
func NewMaintenanceService(slots SlotStore, patterns recurrence.PatternSet, pastWeeks, futureWeeks int, refresher SummaryRefresher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MaintenanceService {
	if pastWeeks <= 0 {
		pastWeeks = defaultPastWeeks
	}
	if futureWeeks <= 0 {
		futureWeeks = defaultFutureWeeks
	}
	if now == nil {
		now = time.Now
	}
	return &MaintenanceService{
		slots:       slots,
		patterns:    patterns,
		pastWeeks:   pastWeeks,
		futureWeeks: futureWeeks,
		refresher:   refresher,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// EnsureCoverage generates every pattern occurrence inside the tenant's
// rolling window and inserts the missing ones. Existing slots are skipped
// untouched. pastWeeks and futureWeeks override the window for this call
// only; zero keeps the configured value, so an administrative caller can
// request a one-off extension without reconfiguring the service. When at
// least one slot was created the tenant's summary is refreshed best-effort.
func (s *MaintenanceService) EnsureCoverage(ctx context.Context, tenantID string, pastWeeks, futureWeeks int) (CoverageResult, error) {
	if s == nil || s.slots == nil {
		return CoverageResult{}, fmt.Errorf("slot store not configured")
	}
	vErr := &ValidationError{}
	if tenantID == "" {
		vErr.add("tenant_id", "tenant is required")
	}
	if pastWeeks < 0 || pastWeeks > maxCoverageWeeks {
		vErr.add("past_weeks", fmt.Sprintf("must be between 0 and %d", maxCoverageWeeks))
	}
	if futureWeeks < 0 || futureWeeks > maxCoverageWeeks {
		vErr.add("future_weeks", fmt.Sprintf("must be between 0 and %d", maxCoverageWeeks))
	}
	if vErr.HasErrors() {
		return CoverageResult{}, vErr
	}
	if pastWeeks == 0 {
		pastWeeks = s.pastWeeks
	}
	if futureWeeks == 0 {
		futureWeeks = s.futureWeeks
	}

	today := recurrence.DateOnly(s.now())
	from := today.AddDate(0, 0, -7*pastWeeks)
	to := today.AddDate(0, 0, 7*futureWeeks+1)

	result := CoverageResult{}
	for _, occ := range recurrence.Generate(s.patterns, from, to) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		slot := Slot{
			TenantID:  tenantID,
			Date:      occ.Date,
			Kind:      occ.Kind,
			CreatedAt: s.now(),
			UpdatedAt: s.now(),
		}
		if s.idGenerator != nil {
			slot.ID = s.idGenerator()
		}

		inserted, err := s.slots.UpsertIfAbsent(ctx, slot)
		if err != nil {
			return result, fmt.Errorf("ensure slot %s %s: %w", occ.Date.Format("2006-01-02"), occ.Kind, err)
		}
		result.Total++
		if inserted {
			result.Created++
			result.TouchedDates = append(result.TouchedDates, occ.Date)
		} else {
			result.Skipped++
		}
	}

	logger := serviceLogger(ctx, s.logger, "maintenance", "ensure_coverage", "tenant_id", tenantID)
	logger.InfoContext(ctx, "coverage ensured",
		"created", result.Created,
		"skipped", result.Skipped,
		"total", result.Total,
		"window_from", from.Format("2006-01-02"),
		"window_to", to.AddDate(0, 0, -1).Format("2006-01-02"))

	if result.Created > 0 && s.refresher != nil {
		if err := s.refresher.Refresh(ctx, tenantID); err != nil {
			logger.WarnContext(ctx, "summary refresh after coverage failed", "error", err, "error_kind", ErrorKind(err))
		}
	}

	return result, nil
}

// NeedsRepopulation is the cheap pre-check the periodic trigger runs before a
// full coverage pass. It probes the last patterned date inside the future
// horizon with point lookups; any missing slot means the window has drifted.
func (s *MaintenanceService) NeedsRepopulation(ctx context.Context, tenantID string) (bool, error) {
	if s == nil || s.slots == nil {
		return false, fmt.Errorf("slot store not configured")
	}

	today := recurrence.DateOnly(s.now())
	horizon := today.AddDate(0, 0, 7*s.futureWeeks)
	probe, ok := recurrence.LastPatternedDateBefore(s.patterns, horizon.AddDate(0, 0, 1))
	if !ok {
		// No patterns configured, nothing to populate.
		return false, nil
	}

	for _, kind := range s.patterns.KindsOn(probe.Weekday()) {
		_, err := s.slots.Get(ctx, tenantID, probe, kind)
		if err == nil {
			continue
		}
		if isNotFound(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// Maintain runs one maintenance cycle across the given tenants: probe, then
// ensure coverage where the probe says the window drifted. A failing tenant
// is logged and skipped so one tenant cannot starve the rest.
func (s *MaintenanceService) Maintain(ctx context.Context, tenantIDs []string) {
	logger := serviceLogger(ctx, s.logger, "maintenance", "maintain")

	for _, tenantID := range tenantIDs {
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "maintenance cycle aborted", "error", err)
			return
		}

		needed, err := s.NeedsRepopulation(ctx, tenantID)
		if err != nil {
			logger.ErrorContext(ctx, "repopulation check failed", "tenant_id", tenantID, "error", err, "error_kind", ErrorKind(err))
			continue
		}
		if !needed {
			continue
		}

		if _, err := s.EnsureCoverage(ctx, tenantID, 0, 0); err != nil {
			logger.ErrorContext(ctx, "coverage pass failed", "tenant_id", tenantID, "error", err, "error_kind", ErrorKind(err))
		}
	}
}
