// Package intent resolves an utterance to a catalog intent with an exact pass
// over normalized patterns followed by a keyword-overlap pass.
package intent

import (
	"fmt"

	"support-bot/internal/common/logger"
	"support-bot/internal/models"
	"support-bot/internal/nlp"
)

// DefaultThreshold is the score a keyword match must strictly exceed.
const DefaultThreshold = 0.3

// TextNormalizer is the part of nlp.Normalizer the matcher depends on.
type TextNormalizer interface {
	Normalize(text string) string
	Keywords(text string) nlp.KeywordSet
}

// Matcher is read-only after NewMatcher and safe for concurrent use.
type Matcher struct {
	catalog    *models.Catalog
	normalizer TextNormalizer
	threshold  float64
	logger     logger.Logger

	// normalized[i][j] is the normalized form of catalog.Intents[i].Patterns[j]
	normalized [][]string
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

func WithLogger(log logger.Logger) Option {
	return func(m *Matcher) {
		m.logger = log
	}
}

// NewMatcher indexes the catalog's normalized patterns.
func NewMatcher(catalog *models.Catalog, normalizer TextNormalizer, opts ...Option) (*Matcher, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("intent matcher requires a non-empty catalog")
	}
	if normalizer == nil {
		return nil, fmt.Errorf("intent matcher requires a normalizer")
	}

	m := &Matcher{
		catalog:    catalog,
		normalizer: normalizer,
		threshold:  DefaultThreshold,
		logger:     logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.threshold < 0 || m.threshold >= 1 {
		return nil, fmt.Errorf("intent threshold must be in [0, 1), got %v", m.threshold)
	}

	m.index()
	return m, nil
}

func (m *Matcher) index() {
	m.normalized = make([][]string, len(m.catalog.Intents))
	seen := make(map[string]string)

	for i, in := range m.catalog.Intents {
		forms := make([]string, len(in.Patterns))
		for j, p := range in.Patterns {
			forms[j] = m.normalizer.Normalize(p)
			if forms[j] == "" {
				m.logger.Warn("Pattern normalizes to nothing and can only match by keywords", map[string]interface{}{
					"intent":  in.Tag,
					"pattern": p,
				})
				continue
			}
			if owner, ok := seen[forms[j]]; ok && owner != in.Tag {
				m.logger.Warn("Pattern is shadowed by an earlier intent", map[string]interface{}{
					"intent":     in.Tag,
					"pattern":    p,
					"shadowedBy": owner,
				})
				continue
			}
			seen[forms[j]] = in.Tag
		}
		m.normalized[i] = forms
	}
}

// Threshold returns the score a keyword match must exceed.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// NormalizedPatterns returns the cached normalized patterns of the intent at
// catalog position i, aligned with its Patterns.
func (m *Matcher) NormalizedPatterns(i int) []string {
	if i < 0 || i >= len(m.normalized) {
		return nil
	}
	out := make([]string, len(m.normalized[i]))
	copy(out, m.normalized[i])
	return out
}

// FindIntent returns the first intent with a normalized pattern equal to the
// normalized input at confidence 1.0. Otherwise it returns the intent of the
// first (intent, pattern) pair with the highest keyword score above the
// threshold. With no such pair the result has a nil Intent and the threshold
// as Confidence.
func (m *Matcher) FindIntent(input string) models.MatchResult {
	normalized := m.normalizer.Normalize(input)
	if normalized != "" {
		for i := range m.catalog.Intents {
			for _, form := range m.normalized[i] {
				if form == normalized {
					return models.MatchResult{
						Intent:     &m.catalog.Intents[i],
						Confidence: 1.0,
						Tier:       models.TierExact,
					}
				}
			}
		}
	}

	userKeywords := m.normalizer.Keywords(input)
	best := models.MatchResult{Confidence: m.threshold, Tier: models.TierNone}
	if userKeywords.Len() == 0 {
		return best
	}

	for i := range m.catalog.Intents {
		for _, pattern := range m.catalog.Intents[i].Patterns {
			score := overlap(userKeywords, m.normalizer.Keywords(pattern))
			if score > best.Confidence {
				best = models.MatchResult{
					Intent:     &m.catalog.Intents[i],
					Confidence: score,
					Tier:       models.TierKeyword,
				}
			}
		}
	}
	return best
}

// KeywordScore is the fraction of the pattern's keywords found in the input.
// It is 0 when either side has no keywords.
func (m *Matcher) KeywordScore(input, pattern string) float64 {
	return overlap(m.normalizer.Keywords(input), m.normalizer.Keywords(pattern))
}

// overlap is |user ∩ pattern| / |pattern|. Only pattern keywords count in the
// denominator.
func overlap(user, pattern nlp.KeywordSet) float64 {
	if user.Len() == 0 || pattern.Len() == 0 {
		return 0
	}
	return float64(user.IntersectionSize(pattern)) / float64(pattern.Len())
}
