package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/rotation-scheduler/internal/recurrence"
)

const (
	// defaultPastWeeks/defaultFutureWeeks bound the default selection
	// window, matching the maintainer's rolling horizon.
	defaultPastWeeks   = 4
	defaultFutureWeeks = 4
	// searchHorizonWeeks widens the window for free-text search.
	searchHorizonWeeks = 52
	// maxSearchResults caps search output for presentation.
	maxSearchResults = 25
)

// SlotQuery selects one of the slot listing modes: manual date takes
// precedence, then free-text search, then the default sliding window.
type SlotQuery struct {
	Search     string
	ManualDate string
}

// FillSlotParams carries a fill request. The slot is addressed by its
// formatted label.
type FillSlotParams struct {
	TenantID   string
	SlotLabel  string
	Details    string
	AuthorID   string
	AuthorName string
}

// SlotService is the date-filtering/search layer over the slot store, plus
// the single end-user mutation path: filling a slot's details.
type SlotService struct {
	slots     SlotStore
	refresher SummaryRefresher
	now       func() time.Time
	logger    *slog.Logger
}

// NewSlotService wires dependencies for slot listing and filling. The
// refresher is optional; when present a successful fill triggers a
// best-effort summary refresh.
func NewSlotService(slots SlotStore, refresher SummaryRefresher, now func() time.Time, logger *slog.Logger) *SlotService {
	if now == nil {
		now = time.Now
	}
	return &SlotService{
		slots:     slots,
		refresher: refresher,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

// AvailableSlots lists slots for selection, ordered by date then kind.
//
// Manual date mode queries that single day. Search mode widens to ±1 year and
// filters display strings by case-insensitive substring, capped for
// presentation. Default mode uses the rolling window. Zero matches yield an
// empty result, never an error.
func (s *SlotService) AvailableSlots(ctx context.Context, tenantID string, query SlotQuery) ([]SlotOption, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("slot store not configured")
	}
	if tenantID == "" {
		vErr := &ValidationError{}
		vErr.add("tenant_id", "tenant is required")
		return nil, vErr
	}

	today := recurrence.DateOnly(s.now())

	if manual := strings.TrimSpace(query.ManualDate); manual != "" {
		date, err := ParseManualDate(manual)
		if err != nil {
			return nil, err
		}
		slots, err := s.slots.QueryRange(ctx, tenantID, date, date)
		if err != nil {
			return nil, err
		}
		return toOptions(slots), nil
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		from := today.AddDate(0, 0, -7*searchHorizonWeeks)
		to := today.AddDate(0, 0, 7*searchHorizonWeeks)
		slots, err := s.slots.QueryRange(ctx, tenantID, from, to)
		if err != nil {
			return nil, err
		}

		needle := strings.ToLower(search)
		options := make([]SlotOption, 0, maxSearchResults)
		for _, slot := range slots {
			display := FormatOption(slot)
			if !strings.Contains(strings.ToLower(display), needle) {
				continue
			}
			options = append(options, SlotOption{Slot: slot, Display: display})
			if len(options) == maxSearchResults {
				break
			}
		}
		return options, nil
	}

	from := today.AddDate(0, 0, -7*defaultPastWeeks)
	to := today.AddDate(0, 0, 7*defaultFutureWeeks)
	slots, err := s.slots.QueryRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	return toOptions(slots), nil
}

// FillSlot attaches human-entered details to an existing slot. Slots are
// never created here; a label that resolves to no stored slot is ErrNotFound.
func (s *SlotService) FillSlot(ctx context.Context, params FillSlotParams) (Slot, error) {
	if s == nil || s.slots == nil {
		return Slot{}, fmt.Errorf("slot store not configured")
	}

	vErr := &ValidationError{}
	if params.TenantID == "" {
		vErr.add("tenant_id", "tenant is required")
	}
	if strings.TrimSpace(params.Details) == "" {
		vErr.add("details", "details are required")
	}
	if vErr.HasErrors() {
		return Slot{}, vErr
	}

	date, kind, err := ParseLabel(params.SlotLabel)
	if err != nil {
		return Slot{}, err
	}

	authorName := strings.TrimSpace(params.AuthorName)
	updated, err := s.slots.SetLabel(ctx, params.TenantID, date, kind, strings.TrimSpace(params.Details), params.AuthorID, authorName)
	if err != nil {
		return Slot{}, err
	}

	logger := serviceLogger(ctx, s.logger, "slots", "fill_slot", "tenant_id", params.TenantID)
	logger.InfoContext(ctx, "slot filled", "date", updated.Date.Format("2006-01-02"), "kind", updated.Kind)

	if s.refresher != nil {
		if err := s.refresher.Refresh(ctx, params.TenantID); err != nil {
			// The fill already succeeded; a stale summary is recoverable.
			logger.WarnContext(ctx, "summary refresh after fill failed", "error", err, "error_kind", ErrorKind(err))
		}
	}

	return updated, nil
}

func toOptions(slots []Slot) []SlotOption {
	options := make([]SlotOption, 0, len(slots))
	for _, slot := range slots {
		options = append(options, SlotOption{Slot: slot, Display: FormatOption(slot)})
	}
	return options
}
