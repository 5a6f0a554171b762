package models

// Intent is a conversational category with example phrasings and candidate replies
type Intent struct {
	Tag       string   `json:"tag" yaml:"tag" db:"tag"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
}

// Catalog is the ordered intent taxonomy. It is read-only once loaded.
type Catalog struct {
	Intents []Intent `json:"intents" yaml:"intents"`
}

// Len returns the number of intents in the catalog
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Intents)
}

// Lookup returns the intent with the given tag
func (c *Catalog) Lookup(tag string) (*Intent, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Intents {
		if c.Intents[i].Tag == tag {
			return &c.Intents[i], true
		}
	}
	return nil, false
}

// Tags returns intent tags in catalog order
func (c *Catalog) Tags() []string {
	if c == nil {
		return nil
	}
	tags := make([]string, len(c.Intents))
	for i, intent := range c.Intents {
		tags[i] = intent.Tag
	}
	return tags
}

// MatchTier records which matcher pass produced a result
type MatchTier string

const (
	TierExact   MatchTier = "exact"
	TierKeyword MatchTier = "keyword"
	TierNone    MatchTier = "none"
)

// MatchResult is the outcome of intent matching. Intent is nil when nothing matched;
// Confidence then holds the threshold and must not be surfaced as a score.
type MatchResult struct {
	Intent     *Intent   `json:"-"`
	Confidence float64   `json:"confidence"`
	Tier       MatchTier `json:"tier"`
}

// Matched reports whether an intent was found
func (r MatchResult) Matched() bool {
	return r.Intent != nil
}

// Tag returns the matched intent tag or an empty string
func (r MatchResult) Tag() string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.Tag
}
