package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/rotation-scheduler/internal/persistence"
	"github.com/example/rotation-scheduler/internal/testfixtures"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rotation.db")
	storage, err := Open("file:" + path)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate storage: %v", err)
	}
	return storage
}

func testSlot(id, tenant string, date time.Time, kind string) persistence.Slot {
	return persistence.Slot{
		ID:       id,
		TenantID: tenant,
		Date:     date,
		Kind:     kind,
	}
}

func TestSlotRepositoryUpsertIfAbsent(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)

	inserted, err := storage.Slots.UpsertIfAbsent(ctx, testSlot("slot-1", "tenant-a", date, "Training"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Fatal("expected first upsert to insert")
	}

	// Same key, different ID: left untouched, no error.
	inserted, err = storage.Slots.UpsertIfAbsent(ctx, testSlot("slot-2", "tenant-a", date, "Training"))
	if err != nil {
		t.Fatalf("duplicate upsert should be absorbed: %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate upsert to be a no-op")
	}

	stored, err := storage.Slots.Get(ctx, "tenant-a", date, "Training")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID != "slot-1" {
		t.Fatalf("existing row must not be replaced, got id %q", stored.ID)
	}

	// Different kind on the same date is a separate key.
	inserted, err = storage.Slots.UpsertIfAbsent(ctx, testSlot("slot-3", "tenant-a", date, "Mission"))
	if err != nil || !inserted {
		t.Fatalf("expected insert for distinct kind, inserted=%v err=%v", inserted, err)
	}

	// Same key under another tenant is independent.
	inserted, err = storage.Slots.UpsertIfAbsent(ctx, testSlot("slot-4", "tenant-b", date, "Training"))
	if err != nil || !inserted {
		t.Fatalf("expected insert for distinct tenant, inserted=%v err=%v", inserted, err)
	}
}

func TestSlotRepositoryUpsertDoesNotTouchFilledSlot(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()

	fixture := testfixtures.NewSlotFixture(
		testfixtures.WithSlotTenant("tenant-a"),
		testfixtures.WithSlotDetails("CQB refresher", "user-9", "Sgt. Hale"),
	)
	date := fixture.Date

	if _, err := storage.Slots.UpsertIfAbsent(ctx, fixture.Persistence()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := storage.Slots.UpsertIfAbsent(ctx, testSlot("slot-9", "tenant-a", date, "Training")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := storage.Slots.Get(ctx, "tenant-a", date, "Training")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Label != "CQB refresher" || stored.AuthorName != "Sgt. Hale" {
		t.Fatalf("upsert must not mutate editable fields, got %+v", stored)
	}
}

func TestSlotRepositorySetLabel(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	t.Run("missing slot is not created implicitly", func(t *testing.T) {
		_, err := storage.Slots.SetLabel(ctx, "tenant-a", date, "Mission", "Operation Thunderbolt", "user-1", "Maj. Reed")
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("updates editable fields only", func(t *testing.T) {
		if _, err := storage.Slots.UpsertIfAbsent(ctx, testSlot("slot-1", "tenant-a", date, "Mission")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		updated, err := storage.Slots.SetLabel(ctx, "tenant-a", date, "Mission", "Operation Thunderbolt", "user-1", "Maj. Reed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Label != "Operation Thunderbolt" || updated.AuthorID != "user-1" || updated.AuthorName != "Maj. Reed" {
			t.Fatalf("unexpected updated slot %+v", updated)
		}
		if updated.ID != "slot-1" {
			t.Fatalf("id must be stable, got %q", updated.ID)
		}
		if !updated.Date.Equal(date) {
			t.Fatalf("date must be stable, got %v", updated.Date)
		}
	})
}

func TestSlotRepositoryQueryRange(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()

	base := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC) // Sunday
	entries := []persistence.Slot{
		testSlot("s1", "tenant-a", base, "Mission"),
		testSlot("s2", "tenant-a", base.AddDate(0, 0, 4), "Training"), // Thursday
		testSlot("s3", "tenant-a", base.AddDate(0, 0, 4), "Mission"),
		testSlot("s4", "tenant-a", base.AddDate(0, 0, 14), "Mission"),
		testSlot("s5", "tenant-b", base, "Mission"),
	}
	for _, entry := range entries {
		if _, err := storage.Slots.UpsertIfAbsent(ctx, entry); err != nil {
			t.Fatalf("seed %s: %v", entry.ID, err)
		}
	}

	got, err := storage.Slots.QueryRange(ctx, "tenant-a", base, base.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantIDs := []string{"s1", "s3", "s2"} // date asc, then kind asc (Mission < Training)
	if len(got) != len(wantIDs) {
		t.Fatalf("expected %d slots, got %d", len(wantIDs), len(got))
	}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Fatalf("slot %d: expected %s, got %s", i, want, got[i].ID)
		}
	}

	empty, err := storage.Slots.QueryRange(ctx, "tenant-c", base, base.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("empty range should not error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no slots, got %d", len(empty))
	}
}

func TestScheduleConfigRepository(t *testing.T) {
	t.Parallel()

	storage := openTestStorage(t)
	ctx := context.Background()

	if _, err := storage.Configs.GetScheduleConfig(ctx, "tenant-a"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing config, got %v", err)
	}

	config := persistence.ScheduleConfig{
		TenantID:       "tenant-a",
		SummaryChannel: "channel-1",
		SummaryMessage: "message-1",
		BriefingSource: "https://briefings.example.com/titles",
	}
	if err := storage.Configs.PutScheduleConfig(ctx, config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := storage.Configs.GetScheduleConfig(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.SummaryChannel != "channel-1" || stored.BriefingSource != config.BriefingSource {
		t.Fatalf("unexpected stored config %+v", stored)
	}

	// Upsert replaces in place.
	config.SummaryMessage = "message-2"
	config.BriefingSource = ""
	if err := storage.Configs.PutScheduleConfig(ctx, config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, err = storage.Configs.GetScheduleConfig(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.SummaryMessage != "message-2" || stored.BriefingSource != "" {
		t.Fatalf("unexpected replaced config %+v", stored)
	}
}
