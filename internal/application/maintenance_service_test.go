package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/rotation-scheduler/internal/recurrence"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("slot-%03d", n)
	}
}

func newMaintenanceService(store *memorySlotStore, refresher SummaryRefresher, now time.Time) *MaintenanceService {
	return NewMaintenanceService(store, recurrence.DefaultPatterns(), 4, 4, refresher, sequentialIDs(), fixedNow(now), nil)
}

func TestEnsureCoverageCreatesFullWindow(t *testing.T) {
	// Monday, so both window edges land on non-patterned days.
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMemorySlotStore()
	svc := newMaintenanceService(store, nil, now)

	result, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0)
	if err != nil {
		t.Fatalf("EnsureCoverage returned error: %v", err)
	}

	// 8 weeks of Thursday Training, Thursday Mission, Sunday Mission.
	if result.Created != 24 {
		t.Errorf("Created = %d, want 24", result.Created)
	}
	if result.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", result.Skipped)
	}
	if result.Total != 24 {
		t.Errorf("Total = %d, want 24", result.Total)
	}
	if len(result.TouchedDates) != 24 {
		t.Errorf("TouchedDates has %d entries, want 24", len(result.TouchedDates))
	}
	if len(store.slots) != 24 {
		t.Errorf("store holds %d slots, want 24", len(store.slots))
	}
}

func TestEnsureCoverageIsIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMemorySlotStore()
	svc := newMaintenanceService(store, nil, now)

	if _, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0); err != nil {
		t.Fatalf("first EnsureCoverage returned error: %v", err)
	}
	result, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0)
	if err != nil {
		t.Fatalf("second EnsureCoverage returned error: %v", err)
	}

	if result.Created != 0 {
		t.Errorf("Created = %d, want 0", result.Created)
	}
	if result.Skipped != 24 {
		t.Errorf("Skipped = %d, want 24", result.Skipped)
	}
}

func TestEnsureCoverageNeverTouchesFilledSlots(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMemorySlotStore()
	svc := newMaintenanceService(store, nil, now)

	if _, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0); err != nil {
		t.Fatal(err)
	}

	date := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	if _, err := store.SetLabel(context.Background(), "tenant-a", date, recurrence.KindTraining, "CQB drills", "user-1", "Avery"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0); err != nil {
		t.Fatal(err)
	}

	slot, err := store.Get(context.Background(), "tenant-a", date, recurrence.KindTraining)
	if err != nil {
		t.Fatal(err)
	}
	if slot.Label != "CQB drills" || slot.AuthorID != "user-1" {
		t.Errorf("filled slot mutated: label=%q author=%q", slot.Label, slot.AuthorID)
	}
}

func TestEnsureCoverageRollsTheWindowForward(t *testing.T) {
	store := newMemorySlotStore()

	first := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	if _, err := newMaintenanceService(store, nil, first).EnsureCoverage(context.Background(), "tenant-a", 0, 0); err != nil {
		t.Fatal(err)
	}

	// One week later only the newly exposed week's slots are created.
	later := first.AddDate(0, 0, 7)
	result, err := newMaintenanceService(store, nil, later).EnsureCoverage(context.Background(), "tenant-a", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Created != 3 {
		t.Errorf("Created = %d, want 3", result.Created)
	}
	if result.Skipped != 21 {
		t.Errorf("Skipped = %d, want 21", result.Skipped)
	}
}

func TestEnsureCoverageWindowOverrides(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	t.Run("extends the window for one call", func(t *testing.T) {
		store := newMemorySlotStore()
		svc := newMaintenanceService(store, nil, now)

		result, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 8)
		if err != nil {
			t.Fatalf("EnsureCoverage returned error: %v", err)
		}
		// 12 weeks of Thursday Training, Thursday Mission, Sunday Mission.
		if result.Created != 36 {
			t.Errorf("Created = %d, want 36", result.Created)
		}

		// The next call falls back to the configured 4/4 window.
		result, err = svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0)
		if err != nil {
			t.Fatalf("EnsureCoverage returned error: %v", err)
		}
		if result.Total != 24 {
			t.Errorf("Total after override = %d, want 24", result.Total)
		}
		if result.Created != 0 {
			t.Errorf("Created after override = %d, want 0", result.Created)
		}
	})

	t.Run("rejects out-of-range weeks", func(t *testing.T) {
		svc := newMaintenanceService(newMemorySlotStore(), nil, now)

		var vErr *ValidationError
		if _, err := svc.EnsureCoverage(context.Background(), "tenant-a", -1, 0); !errors.As(err, &vErr) {
			t.Fatalf("expected validation error for negative weeks, got %v", err)
		} else if _, ok := vErr.FieldErrors["past_weeks"]; !ok {
			t.Errorf("field errors = %v, want past_weeks entry", vErr.FieldErrors)
		}

		if _, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 53); !errors.As(err, &vErr) {
			t.Fatalf("expected validation error for oversized weeks, got %v", err)
		} else if _, ok := vErr.FieldErrors["future_weeks"]; !ok {
			t.Errorf("field errors = %v, want future_weeks entry", vErr.FieldErrors)
		}
	})
}

func TestEnsureCoverageRefreshesSummaryOnlyWhenCreating(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMemorySlotStore()
	refresher := &recordingRefresher{}
	svc := newMaintenanceService(store, refresher, now)

	if _, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0); err != nil {
		t.Fatal(err)
	}
	if len(refresher.tenants) != 1 {
		t.Fatalf("refresh count after creating pass = %d, want 1", len(refresher.tenants))
	}

	if _, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0); err != nil {
		t.Fatal(err)
	}
	if len(refresher.tenants) != 1 {
		t.Errorf("refresh count after no-op pass = %d, want 1", len(refresher.tenants))
	}
}

func TestNeedsRepopulation(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	t.Run("empty store needs population", func(t *testing.T) {
		svc := newMaintenanceService(newMemorySlotStore(), nil, now)
		needed, err := svc.NeedsRepopulation(context.Background(), "tenant-a")
		if err != nil {
			t.Fatal(err)
		}
		if !needed {
			t.Error("NeedsRepopulation = false, want true")
		}
	})

	t.Run("fully covered window does not", func(t *testing.T) {
		store := newMemorySlotStore()
		svc := newMaintenanceService(store, nil, now)
		if _, err := svc.EnsureCoverage(context.Background(), "tenant-a", 0, 0); err != nil {
			t.Fatal(err)
		}
		needed, err := svc.NeedsRepopulation(context.Background(), "tenant-a")
		if err != nil {
			t.Fatal(err)
		}
		if needed {
			t.Error("NeedsRepopulation = true after full coverage, want false")
		}
	})

	t.Run("window drift is detected", func(t *testing.T) {
		store := newMemorySlotStore()
		if _, err := newMaintenanceService(store, nil, now).EnsureCoverage(context.Background(), "tenant-a", 0, 0); err != nil {
			t.Fatal(err)
		}
		later := newMaintenanceService(store, nil, now.AddDate(0, 0, 7))
		needed, err := later.NeedsRepopulation(context.Background(), "tenant-a")
		if err != nil {
			t.Fatal(err)
		}
		if !needed {
			t.Error("NeedsRepopulation = false one week later, want true")
		}
	})

	t.Run("no patterns means nothing to populate", func(t *testing.T) {
		svc := NewMaintenanceService(newMemorySlotStore(), recurrence.PatternSet{}, 4, 4, nil, nil, fixedNow(now), nil)
		needed, err := svc.NeedsRepopulation(context.Background(), "tenant-a")
		if err != nil {
			t.Fatal(err)
		}
		if needed {
			t.Error("NeedsRepopulation = true with no patterns, want false")
		}
	})
}

func TestMaintainContinuesPastFailingTenant(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store := newMemorySlotStore()
	failing := &failingProbeStore{memorySlotStore: store, failTenant: "tenant-bad"}
	svc := NewMaintenanceService(failing, recurrence.DefaultPatterns(), 4, 4, nil, sequentialIDs(), fixedNow(now), nil)

	svc.Maintain(context.Background(), []string{"tenant-bad", "tenant-a"})

	slots, err := store.QueryRange(context.Background(), "tenant-a", now.AddDate(0, 0, -28), now.AddDate(0, 0, 28))
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) == 0 {
		t.Error("healthy tenant was not maintained after a failing one")
	}
}

// failingProbeStore fails point lookups for one tenant to exercise the
// log-and-continue path.
type failingProbeStore struct {
	*memorySlotStore
	failTenant string
}

func (f *failingProbeStore) Get(ctx context.Context, tenantID string, date time.Time, kind recurrence.Kind) (Slot, error) {
	if tenantID == f.failTenant {
		return Slot{}, errors.New("storage offline")
	}
	return f.memorySlotStore.Get(ctx, tenantID, date, kind)
}
