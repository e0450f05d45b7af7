package matching

import (
	"context"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// Config carries the acceptance thresholds for the scoring strategies.
type Config struct {
	// KeywordThreshold is the minimum fraction of shared tokens for the
	// keyword-overlap strategy.
	KeywordThreshold float64
	// FuzzyThreshold is the minimum edit-distance similarity for the fuzzy
	// strategy.
	FuzzyThreshold float64
}

// DefaultConfig returns the thresholds used by the deployed rotation.
func DefaultConfig() Config {
	return Config{
		KeywordThreshold: 0.5,
		FuzzyThreshold:   0.8,
	}
}

// Strategy is one step of the matching cascade. Strategies are pure over their
// inputs; they honour ctx cancellation between candidates and report whether a
// candidate cleared their acceptance rule.
type Strategy struct {
	Name  string
	Match func(ctx context.Context, event string, candidates []string) (string, bool)
}

// Matcher runs an ordered cascade of matching strategies, short-circuiting on
// the first hit. A match is never an obligation: an empty candidate set, an
// expired context, or a cascade with no hit all yield "no match".
type Matcher struct {
	strategies []Strategy
}

// NewMatcher builds the standard cascade: exact equality, normalised equality,
// substring containment, keyword overlap, fuzzy similarity.
func NewMatcher(cfg Config) *Matcher {
	if cfg.KeywordThreshold <= 0 {
		cfg.KeywordThreshold = DefaultConfig().KeywordThreshold
	}
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = DefaultConfig().FuzzyThreshold
	}

	return &Matcher{
		strategies: []Strategy{
			{Name: "exact", Match: matchExact},
			{Name: "normalized", Match: matchNormalized},
			{Name: "substring", Match: matchSubstring},
			{Name: "keywords", Match: matchKeywords(cfg.KeywordThreshold)},
			{Name: "fuzzy", Match: matchFuzzy(cfg.FuzzyThreshold)},
		},
	}
}

// Match returns the best candidate title for the event name, or false when no
// strategy clears its threshold before ctx expires. Deadline expiry is an
// expected outcome, not an error.
func (m *Matcher) Match(ctx context.Context, event string, candidates []string) (string, bool) {
	if m == nil || len(candidates) == 0 || strings.TrimSpace(event) == "" {
		return "", false
	}

	for _, strategy := range m.strategies {
		if ctx.Err() != nil {
			return "", false
		}
		if title, ok := strategy.Match(ctx, event, candidates); ok {
			return title, true
		}
	}
	return "", false
}

// Strategies exposes the cascade order for introspection in logs and tests.
func (m *Matcher) Strategies() []string {
	names := make([]string, 0, len(m.strategies))
	for _, s := range m.strategies {
		names = append(names, s.Name)
	}
	return names
}

func matchExact(ctx context.Context, event string, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if strings.EqualFold(strings.TrimSpace(event), strings.TrimSpace(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

func matchNormalized(ctx context.Context, event string, candidates []string) (string, bool) {
	target := Normalize(event)
	if target == "" {
		return "", false
	}
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if Normalize(candidate) == target {
			return candidate, true
		}
	}
	return "", false
}

func matchSubstring(ctx context.Context, event string, candidates []string) (string, bool) {
	target := Normalize(event)
	if target == "" {
		return "", false
	}
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		normalized := Normalize(candidate)
		if normalized == "" {
			continue
		}
		if strings.Contains(normalized, target) || strings.Contains(target, normalized) {
			return candidate, true
		}
	}
	return "", false
}

func matchKeywords(threshold float64) func(context.Context, string, []string) (string, bool) {
	return func(ctx context.Context, event string, candidates []string) (string, bool) {
		eventTokens := Tokenize(event)
		if len(eventTokens) == 0 {
			return "", false
		}

		best := ""
		bestScore := 0.0
		bestShared := 0

		for _, candidate := range candidates {
			if ctx.Err() != nil {
				return "", false
			}
			candidateTokens := Tokenize(candidate)
			if len(candidateTokens) == 0 {
				continue
			}

			shared := sharedTokenCount(eventTokens, candidateTokens)
			total := len(eventTokens)
			if len(candidateTokens) > total {
				total = len(candidateTokens)
			}
			score := float64(shared) / float64(total)
			if score < threshold {
				continue
			}

			switch {
			case score > bestScore:
			case score == bestScore && shared > bestShared:
			case score == bestScore && shared == bestShared && best != "" && candidate < best:
			default:
				continue
			}
			best = candidate
			bestScore = score
			bestShared = shared
		}

		return best, best != ""
	}
}

func matchFuzzy(threshold float64) func(context.Context, string, []string) (string, bool) {
	return func(ctx context.Context, event string, candidates []string) (string, bool) {
		target := Normalize(event)
		if target == "" {
			return "", false
		}

		best := ""
		bestScore := 0.0

		for _, candidate := range candidates {
			if ctx.Err() != nil {
				return "", false
			}
			normalized := Normalize(candidate)
			if normalized == "" {
				continue
			}
			score := levenshtein.Similarity(target, normalized, nil)
			if score < threshold {
				continue
			}
			if score > bestScore || (score == bestScore && best != "" && candidate < best) {
				best = candidate
				bestScore = score
			}
		}

		return best, best != ""
	}
}

// Normalize lowercases a string and strips everything that is not a letter or
// digit, collapsing punctuation and whitespace differences.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize splits a string into lowercase alphanumeric tokens, dropping
// duplicates.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		tokens = append(tokens, field)
	}
	return tokens
}

func sharedTokenCount(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, token := range a {
		set[token] = struct{}{}
	}
	count := 0
	for _, token := range b {
		if _, ok := set[token]; ok {
			count++
		}
	}
	return count
}
