package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind categorises a calendar slot. The set is open ended; the values below are
// the ones the default rotation produces.
type Kind string

const (
	// KindTraining marks a recurring training slot.
	KindTraining Kind = "Training"
	// KindMission marks a recurring or ad-hoc mission slot.
	KindMission Kind = "Mission"
)

// ErrUnknownKind indicates a kind string that no pattern or known value matches.
var ErrUnknownKind = errors.New("recurrence: unknown kind")

// ParseKind validates a kind string case-insensitively and returns its
// canonical form. Unknown values are rejected, never coerced.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "training":
		return KindTraining, nil
	case "mission":
		return KindMission, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

// Pattern pairs a weekday with the kind of slot that must exist on every
// occurrence of that weekday.
type Pattern struct {
	Weekday time.Weekday
	Kind    Kind
}

// PatternSet is the ordered collection of recurrence rules for a tenant's
// rotation. Order is preserved for deterministic generation output.
type PatternSet []Pattern

// ErrDuplicatePattern indicates two patterns collide on the same weekday+kind.
var ErrDuplicatePattern = errors.New("recurrence: duplicate weekday+kind pattern")

// DefaultPatterns returns the canonical rotation: Thursday Training, Thursday
// Mission, Sunday Mission.
func DefaultPatterns() PatternSet {
	return PatternSet{
		{Weekday: time.Thursday, Kind: KindTraining},
		{Weekday: time.Thursday, Kind: KindMission},
		{Weekday: time.Sunday, Kind: KindMission},
	}
}

// Validate rejects pattern sets that would emit the same (date, kind) twice.
func (ps PatternSet) Validate() error {
	seen := make(map[Pattern]struct{}, len(ps))
	for _, p := range ps {
		if _, ok := seen[p]; ok {
			return fmt.Errorf("%w: %s %s", ErrDuplicatePattern, p.Weekday, p.Kind)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// KindsOn lists the kinds the set produces on the given weekday, in set order.
func (ps PatternSet) KindsOn(day time.Weekday) []Kind {
	var kinds []Kind
	for _, p := range ps {
		if p.Weekday == day {
			kinds = append(kinds, p.Kind)
		}
	}
	return kinds
}

type patternDoc struct {
	Patterns []patternEntry `yaml:"patterns"`
}

type patternEntry struct {
	Weekday string `yaml:"weekday"`
	Kind    string `yaml:"kind"`
}

// ParsePatternsYAML decodes a pattern set from YAML of the form:
//
//	patterns:
//	  - weekday: thursday
//	    kind: Training
//
// The parsed set is validated before being returned.
func ParsePatternsYAML(data []byte) (PatternSet, error) {
	var doc patternDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("recurrence: parse pattern file: %w", err)
	}
	if len(doc.Patterns) == 0 {
		return nil, errors.New("recurrence: pattern file defines no patterns")
	}

	set := make(PatternSet, 0, len(doc.Patterns))
	for _, entry := range doc.Patterns {
		day, err := parseWeekday(entry.Weekday)
		if err != nil {
			return nil, err
		}
		kind, err := ParseKind(entry.Kind)
		if err != nil {
			return nil, err
		}
		set = append(set, Pattern{Weekday: day, Kind: kind})
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func parseWeekday(value string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("recurrence: unknown weekday %q", value)
}
