package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLemmatizer map[string]string

func (m mapLemmatizer) Lemma(word string) string {
	if l, ok := m[word]; ok {
		return l
	}
	return word
}

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New(WithLemmatizer(mapLemmatizer{
		"orders":   "order",
		"packages": "package",
		"was":      "be",
		"items":    "item",
		"shipped":  "ship",
		"better":   "good",
		"goods":    "good",
	}))
	require.NoError(t, err)
	return n
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \t\n ", ""},
		{"punctuation only", "?!...", ""},
		{"lowercases", "Hello", "hello"},
		{"strips trailing punctuation", "Where is my order?", "where is my order"},
		{"lemmatizes", "Track my packages", "track my package"},
		{"collapses spacing", "  Order   status  ", "order status"},
		{"keeps contractions whole", "I don't want this", "i don't want this"},
		{"curly apostrophe", "That’s all", "that's all"},
		{"splits symbols", "order #AB1234", "order ab1234"},
		{"splits email", "mail a.b@shop.com", "mail a.b shop.com"},
		{"splits date", "on 12/05/2024", "on 12 05 2024"},
		{"drops currency", "over $50", "over 50"},
		{"non-ascii casing", "ÉCLAIR", "éclair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer(t)

	inputs := []string{
		"Where is my order?",
		"Has my order been shipped",
		"I was charged twice for my orders. How can I request a refund?",
		"Can I pay with PayPal?",
		"That's all",
		"",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalize_LemmaFixpoint(t *testing.T) {
	n := newTestNormalizer(t)

	assert.Equal(t, "good", n.Normalize("better"))
	assert.Equal(t, "good", n.Normalize(n.Normalize("goods")))
}

func TestNormalize_ChainedLemmas(t *testing.T) {
	n, err := New(WithLemmatizer(mapLemmatizer{"a1": "a2", "a2": "a3"}))
	require.NoError(t, err)

	assert.Equal(t, "a3", n.Normalize("a1"))
	assert.Equal(t, n.Normalize("a1"), n.Normalize(n.Normalize("a1")))
}

func TestKeywords(t *testing.T) {
	n := newTestNormalizer(t)

	got := n.Keywords("Where is my order? Is my order shipped")
	assert.ElementsMatch(t, []string{"order", "ship"}, got.Sorted())

	assert.Equal(t, 0, n.Keywords("").Len())
	assert.Equal(t, 1, n.Keywords("I'm done with it").Len())
	assert.True(t, n.Keywords("I'm done with it").Contains("done"))
}

func TestEnglishLemmatizer(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the english dictionary")
	}
	n, err := New()
	require.NoError(t, err)

	assert.Equal(t, "order", n.Normalize("Orders"))
	for _, in := range []string{"Where is my order?", "Track my package", "Payment methods"} {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}
