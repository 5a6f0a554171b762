// Package entity pulls structured values such as order numbers and emails out
// of raw utterances.
package entity

import (
	"fmt"
	"regexp"

	"support-bot/internal/models"
)

// Pattern binds an entity type to a regular expression. With no capture
// groups the whole match is the value, with one group that group, and with
// more the groups form a tuple.
type Pattern struct {
	Type string
	Expr *regexp.Regexp
}

// DefaultPatterns returns the built-in patterns in extraction order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{models.EntityOrderNumber, regexp.MustCompile(`(?i)order\s+(?:number|#)?\s*(\w{6,12})`)},
		{models.EntityEmail, regexp.MustCompile(`(?i)[\w.-]+@[\w.-]+\.\w+`)},
		{models.EntityProductCode, regexp.MustCompile(`(?i)product\s+(?:code|#)?\s*(\w{3,10})`)},
		{models.EntityDate, regexp.MustCompile(`(?i)(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?`)},
	}
}

// Extractor applies an ordered pattern set. It holds no mutable state and is
// safe for concurrent use.
type Extractor struct {
	patterns []Pattern
}

// NewExtractor uses DefaultPatterns when called without patterns.
func NewExtractor(patterns ...Pattern) (*Extractor, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	seen := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		if p.Type == "" || p.Expr == nil {
			return nil, fmt.Errorf("entity pattern needs a type and an expression")
		}
		if seen[p.Type] {
			return nil, fmt.Errorf("duplicate entity pattern %q", p.Type)
		}
		seen[p.Type] = true
	}
	cp := make([]Pattern, len(patterns))
	copy(cp, patterns)
	return &Extractor{patterns: cp}, nil
}

// Extract returns the first match of every pattern found in text.
func (e *Extractor) Extract(text string) models.Entities {
	found := make(models.Entities)
	for _, p := range e.patterns {
		m := p.Expr.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch groups := m[1:]; len(groups) {
		case 0:
			found[p.Type] = models.Scalar(m[0])
		case 1:
			found[p.Type] = models.Scalar(groups[0])
		default:
			found[p.Type] = models.Tuple(groups...)
		}
	}
	return found
}

// Types lists the entity types in extraction order.
func (e *Extractor) Types() []string {
	out := make([]string, len(e.patterns))
	for i, p := range e.patterns {
		out[i] = p.Type
	}
	return out
}
