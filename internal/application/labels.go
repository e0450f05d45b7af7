package application

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/example/rotation-scheduler/internal/recurrence"
)

// Labels are how external callers address slots: "Thursday Training -
// 07/03/24". The format is stable and round-trippable back to the
// (date, kind) key. Internally slots are keyed by ID; the label is purely a
// presentation/search key.

var (
	// ErrMalformedDate indicates manual date input that does not parse as
	// DD-MM-YY.
	ErrMalformedDate = errors.New("application: malformed date, expected DD-MM-YY")
	// ErrMalformedLabel indicates a slot label that does not parse back to a
	// (date, kind) key.
	ErrMalformedLabel = errors.New("application: malformed slot label")
)

// twoDigitYearMax is the century pivot for two-digit years: values up to it
// resolve to 2000+YY, above it to 1900+YY. Fixed by configuration, never
// inferred.
const twoDigitYearMax = 50

// displayNameLimit truncates free-text details in listing output.
const displayNameLimit = 20

var manualDatePattern = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{2})$`)

// FormatLabel renders the stable user-addressable key for a slot.
func FormatLabel(date time.Time, kind recurrence.Kind) string {
	return fmt.Sprintf("%s %s - %02d/%02d/%02d", date.Weekday(), kind, date.Day(), int(date.Month()), date.Year()%100)
}

// FormatOption renders the listing string for a slot: the stable label, plus
// a truncated details suffix when the slot is filled.
func FormatOption(slot Slot) string {
	label := FormatLabel(slot.Date, slot.Kind)
	details := strings.TrimSpace(slot.Label)
	if details == "" {
		return label
	}
	if len(details) > displayNameLimit {
		details = details[:displayNameLimit] + "..."
	}
	return fmt.Sprintf("%s (%s)", label, details)
}

// ParseLabel recovers the (date, kind) key from a formatted label. Any
// details suffix appended by FormatOption is ignored.
func ParseLabel(label string) (time.Time, recurrence.Kind, error) {
	key := label
	if idx := strings.Index(key, " ("); idx >= 0 {
		key = key[:idx]
	}
	key = strings.TrimSpace(key)

	head, dateStr, found := strings.Cut(key, " - ")
	if !found {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrMalformedLabel, label)
	}

	fields := strings.Fields(head)
	if len(fields) != 2 {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrMalformedLabel, label)
	}

	kind, err := recurrence.ParseKind(fields[1])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrMalformedLabel, label)
	}

	parts := strings.Split(strings.TrimSpace(dateStr), "/")
	if len(parts) != 3 {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrMalformedLabel, label)
	}
	date, err := buildDate(parts[2], parts[1], parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrMalformedLabel, label)
	}

	if !strings.EqualFold(fields[0], date.Weekday().String()) {
		return time.Time{}, "", fmt.Errorf("%w: weekday does not match date in %q", ErrMalformedLabel, label)
	}

	return date, kind, nil
}

// ParseManualDate parses manual date input in DD-MM-YY form. Malformed input
// is rejected with ErrMalformedDate, never silently defaulted.
func ParseManualDate(input string) (time.Time, error) {
	match := manualDatePattern.FindStringSubmatch(strings.TrimSpace(input))
	if match == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, input)
	}

	date, err := buildDate(match[3], match[2], match[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, input)
	}
	return date, nil
}

func buildDate(yy, mm, dd string) (time.Time, error) {
	year, err := strconv.Atoi(yy)
	if err != nil {
		return time.Time{}, err
	}
	month, err := strconv.Atoi(mm)
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(dd)
	if err != nil {
		return time.Time{}, err
	}

	if year <= twoDigitYearMax {
		year += 2000
	} else {
		year += 1900
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises out-of-range components; reject rather than accept
	// a shifted date.
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("no such calendar date %04d-%02d-%02d", year, month, day)
	}
	return date, nil
}
