package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	patterns := DefaultPatterns()

	t.Run("emits one occurrence per matching weekday and pattern", func(t *testing.T) {
		t.Parallel()

		// Monday 2024-03-04 .. Monday 2024-03-11 covers one Thursday and one Sunday.
		got := Generate(patterns, date(2024, time.March, 4), date(2024, time.March, 11))

		want := []Occurrence{
			{Date: date(2024, time.March, 7), Kind: KindTraining},
			{Date: date(2024, time.March, 7), Kind: KindMission},
			{Date: date(2024, time.March, 10), Kind: KindMission},
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d occurrences, got %d", len(want), len(got))
		}
		for i := range want {
			if !got[i].Date.Equal(want[i].Date) || got[i].Kind != want[i].Kind {
				t.Fatalf("occurrence %d: expected %v %s, got %v %s", i, want[i].Date, want[i].Kind, got[i].Date, got[i].Kind)
			}
		}
	})

	t.Run("produces no duplicates over an eight week span", func(t *testing.T) {
		t.Parallel()

		from := date(2024, time.January, 1)
		to := from.AddDate(0, 0, 56)
		got := Generate(patterns, from, to)

		if len(got) != 8*3 {
			t.Fatalf("expected 24 occurrences over 8 weeks, got %d", len(got))
		}

		seen := make(map[string]struct{}, len(got))
		for _, occ := range got {
			key := occ.Date.Format("2006-01-02") + string(occ.Kind)
			if _, ok := seen[key]; ok {
				t.Fatalf("duplicate occurrence %s %s", occ.Date, occ.Kind)
			}
			seen[key] = struct{}{}
		}
	})

	t.Run("half-open range excludes the end date", func(t *testing.T) {
		t.Parallel()

		// Range ends on a Thursday; the Thursday itself must not be emitted.
		got := Generate(patterns, date(2024, time.March, 4), date(2024, time.March, 7))
		if len(got) != 0 {
			t.Fatalf("expected no occurrences, got %d", len(got))
		}
	})

	t.Run("zero and negative ranges yield empty results", func(t *testing.T) {
		t.Parallel()

		if got := Generate(patterns, date(2024, time.March, 7), date(2024, time.March, 7)); len(got) != 0 {
			t.Fatalf("zero range: expected empty, got %d", len(got))
		}
		if got := Generate(patterns, date(2024, time.March, 10), date(2024, time.March, 4)); len(got) != 0 {
			t.Fatalf("negative range: expected empty, got %d", len(got))
		}
	})

	t.Run("ordered by date then pattern order", func(t *testing.T) {
		t.Parallel()

		got := Generate(patterns, date(2024, time.March, 1), date(2024, time.March, 31))
		for i := 1; i < len(got); i++ {
			if got[i].Date.Before(got[i-1].Date) {
				t.Fatalf("occurrences out of date order at index %d", i)
			}
		}
	})
}

func TestGenerateNormalisesTimestamps(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 60*60)
	from := time.Date(2024, time.March, 4, 23, 30, 0, 0, loc)
	to := time.Date(2024, time.March, 11, 6, 15, 0, 0, loc)

	got := Generate(DefaultPatterns(), from, to)
	for _, occ := range got {
		if occ.Date.Location() != time.UTC {
			t.Fatalf("expected UTC date, got %v", occ.Date.Location())
		}
		if h, m, s := occ.Date.Clock(); h+m+s != 0 {
			t.Fatalf("expected midnight date, got %v", occ.Date)
		}
	}
}

func TestLastPatternedDateBefore(t *testing.T) {
	t.Parallel()

	patterns := DefaultPatterns()

	// Bound Monday 2024-03-11: latest patterned day before it is Sunday 2024-03-10.
	got, ok := LastPatternedDateBefore(patterns, date(2024, time.March, 11))
	if !ok {
		t.Fatal("expected a patterned date")
	}
	if !got.Equal(date(2024, time.March, 10)) {
		t.Fatalf("expected 2024-03-10, got %v", got)
	}

	if _, ok := LastPatternedDateBefore(nil, date(2024, time.March, 11)); ok {
		t.Fatal("empty pattern set should report no patterned date")
	}
}

func TestPatternSetValidate(t *testing.T) {
	t.Parallel()

	if err := DefaultPatterns().Validate(); err != nil {
		t.Fatalf("default patterns should validate: %v", err)
	}

	colliding := PatternSet{
		{Weekday: time.Thursday, Kind: KindTraining},
		{Weekday: time.Thursday, Kind: KindTraining},
	}
	if err := colliding.Validate(); err == nil {
		t.Fatal("expected duplicate pattern error")
	}
}

func TestParsePatternsYAML(t *testing.T) {
	t.Parallel()

	t.Run("parses a valid document", func(t *testing.T) {
		t.Parallel()

		doc := []byte("patterns:\n  - weekday: thursday\n    kind: Training\n  - weekday: sunday\n    kind: mission\n")
		set, err := ParsePatternsYAML(doc)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(set) != 2 {
			t.Fatalf("expected 2 patterns, got %d", len(set))
		}
		if set[0].Weekday != time.Thursday || set[0].Kind != KindTraining {
			t.Fatalf("unexpected first pattern: %+v", set[0])
		}
		if set[1].Kind != KindMission {
			t.Fatalf("kind not canonicalised: %+v", set[1])
		}
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		t.Parallel()

		doc := []byte("patterns:\n  - weekday: thursday\n    kind: Briefing\n")
		if _, err := ParsePatternsYAML(doc); err == nil {
			t.Fatal("expected unknown kind error")
		}
	})

	t.Run("rejects colliding entries", func(t *testing.T) {
		t.Parallel()

		doc := []byte("patterns:\n  - weekday: sunday\n    kind: Mission\n  - weekday: Sunday\n    kind: mission\n")
		if _, err := ParsePatternsYAML(doc); err == nil {
			t.Fatal("expected duplicate pattern error")
		}
	})

	t.Run("rejects empty documents", func(t *testing.T) {
		t.Parallel()

		if _, err := ParsePatternsYAML([]byte("patterns: []\n")); err == nil {
			t.Fatal("expected error for empty pattern list")
		}
	})
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	if kind, err := ParseKind("  training "); err != nil || kind != KindTraining {
		t.Fatalf("expected Training, got %q err=%v", kind, err)
	}
	if _, err := ParseKind("ceremony"); err == nil {
		t.Fatal("expected unknown kind error")
	}
}
