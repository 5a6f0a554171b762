package intent

import (
	"testing"

	"support-bot/internal/catalog"
	"support-bot/internal/models"
	"support-bot/internal/nlp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identity struct{}

func (identity) Lemma(word string) string { return word }

func testCatalog() *models.Catalog {
	return &models.Catalog{Intents: []models.Intent{
		{
			Tag:       "greeting",
			Patterns:  []string{"Hi", "Hello", "Good morning"},
			Responses: []string{"Hello!"},
		},
		{
			Tag:       "order_status",
			Patterns:  []string{"Where is my order?", "Track my package", "Order status"},
			Responses: []string{"Let me check."},
		},
		{
			Tag:       "returns",
			Patterns:  []string{"Return policy", "Refund my order"},
			Responses: []string{"Returns are accepted within 30 days."},
		},
	}}
}

func newTestMatcher(t *testing.T, opts ...Option) *Matcher {
	t.Helper()
	n, err := nlp.New(nlp.WithLemmatizer(identity{}))
	require.NoError(t, err)
	m, err := NewMatcher(testCatalog(), n, opts...)
	require.NoError(t, err)
	return m
}

func TestFindIntent_Exact(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		input string
		tag   string
	}{
		{"Hello", "greeting"},
		{"hello!!", "greeting"},
		{"  GOOD   morning. ", "greeting"},
		{"where is my order", "order_status"},
		{"Order status?", "order_status"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := m.FindIntent(tt.input)
			require.True(t, res.Matched())
			assert.Equal(t, tt.tag, res.Tag())
			assert.Equal(t, 1.0, res.Confidence)
			assert.Equal(t, models.TierExact, res.Tier)
		})
	}
}

func TestFindIntent_ExactBeatsKeyword(t *testing.T) {
	m := newTestMatcher(t)

	// the keyword pass would pick "Where is my order?" at 1.0
	res := m.FindIntent("Refund my order")
	assert.Equal(t, "returns", res.Tag())
	assert.Equal(t, models.TierExact, res.Tier)
}

func TestFindIntent_Keyword(t *testing.T) {
	m := newTestMatcher(t)

	res := m.FindIntent("I would like to track the package I bought")
	require.True(t, res.Matched())
	assert.Equal(t, "order_status", res.Tag())
	assert.Equal(t, models.TierKeyword, res.Tier)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestFindIntent_KeywordTieKeepsEarlier(t *testing.T) {
	m := newTestMatcher(t)

	// half of "Order status" and half of "Return policy"; order_status comes first
	res := m.FindIntent("policy status")
	require.True(t, res.Matched())
	assert.Equal(t, "order_status", res.Tag())
	assert.Equal(t, models.TierKeyword, res.Tier)
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestFindIntent_NoMatchSentinel(t *testing.T) {
	m := newTestMatcher(t)

	for _, input := range []string{"asdkjalksd", "", "???", "the and of"} {
		t.Run(input, func(t *testing.T) {
			res := m.FindIntent(input)
			assert.False(t, res.Matched())
			assert.Nil(t, res.Intent)
			assert.Equal(t, 0.3, res.Confidence)
			assert.Equal(t, models.TierNone, res.Tier)
			assert.Equal(t, "", res.Tag())
		})
	}
}

func TestFindIntent_ScoreAboveThreshold(t *testing.T) {
	m := newTestMatcher(t, WithThreshold(0.6))

	// best pair score is 0.5, which does not exceed 0.6
	res := m.FindIntent("status of something")
	assert.False(t, res.Matched())
	assert.Equal(t, 0.6, res.Confidence)
}

func TestKeywordScore(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name    string
		input   string
		pattern string
		want    float64
	}{
		{"full containment", "please track my late package now", "Track my package", 1.0},
		{"half", "package", "Track my package", 0.5},
		{"asymmetric", "Track my package", "package", 1.0},
		{"no overlap", "refund", "Track my package", 0},
		{"empty input", "", "Track my package", 0},
		{"stop word pattern", "where is it", "where is", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.KeywordScore(tt.input, tt.pattern), 1e-9)
		})
	}
}

func TestNewMatcher_Errors(t *testing.T) {
	n, err := nlp.New(nlp.WithLemmatizer(identity{}))
	require.NoError(t, err)

	_, err = NewMatcher(nil, n)
	assert.Error(t, err)

	_, err = NewMatcher(&models.Catalog{}, n)
	assert.Error(t, err)

	_, err = NewMatcher(testCatalog(), nil)
	assert.Error(t, err)

	_, err = NewMatcher(testCatalog(), n, WithThreshold(1))
	assert.Error(t, err)
}

func TestNormalizedPatterns(t *testing.T) {
	m := newTestMatcher(t)

	assert.Equal(t, []string{"where is my order", "track my package", "order status"}, m.NormalizedPatterns(1))
	assert.Nil(t, m.NormalizedPatterns(9))
}

func TestCatalogRoundTrip(t *testing.T) {
	m := newTestMatcher(t)
	cat := testCatalog()

	for _, in := range cat.Intents {
		for _, p := range in.Patterns {
			res := m.FindIntent(p)
			assert.Equal(t, in.Tag, res.Tag(), "pattern %q", p)
			assert.Equal(t, 1.0, res.Confidence, "pattern %q", p)
		}
	}
}

func TestCatalogRoundTrip_English(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the english dictionary")
	}
	cat, err := catalog.Default()
	require.NoError(t, err)
	n, err := nlp.New()
	require.NoError(t, err)
	m, err := NewMatcher(cat, n)
	require.NoError(t, err)

	for _, in := range cat.Intents {
		for _, p := range in.Patterns {
			res := m.FindIntent(p)
			assert.Equal(t, in.Tag, res.Tag(), "pattern %q", p)
			assert.Equal(t, 1.0, res.Confidence, "pattern %q", p)
			assert.Equal(t, models.TierExact, res.Tier, "pattern %q", p)
		}
	}
}
