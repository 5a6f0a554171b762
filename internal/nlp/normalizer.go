// Package nlp turns raw utterances into the normalized token strings and
// keyword sets the intent matcher compares.
package nlp

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lemmatizer maps a lowercase token to its dictionary base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// maxLemmaPasses bounds the fixpoint loop in lemma.
const maxLemmaPasses = 4

var apostrophes = strings.NewReplacer("\u2019", "'", "\u02bc", "'")

var englishLemmatizer = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// EnglishLemmatizer returns the shared English dictionary lemmatizer. The
// dictionary is decoded once per process.
func EnglishLemmatizer() (Lemmatizer, error) {
	l, err := englishLemmatizer()
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return l, nil
}

// Normalizer is stateless after construction and safe for concurrent use.
type Normalizer struct {
	lemmatizer Lemmatizer
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLemmatizer replaces the English dictionary lemmatizer.
func WithLemmatizer(l Lemmatizer) Option {
	return func(n *Normalizer) {
		n.lemmatizer = l
	}
}

// New builds a Normalizer. Without WithLemmatizer it loads the English dictionary.
func New(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{}
	for _, opt := range opts {
		opt(n)
	}
	if n.lemmatizer == nil {
		l, err := EnglishLemmatizer()
		if err != nil {
			return nil, err
		}
		n.lemmatizer = l
	}
	return n, nil
}

// Normalize lowercases text, splits it on Unicode word boundaries, drops
// whitespace and single punctuation or symbol characters, lemmatizes each
// token and joins the result with single spaces.
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// Tokens is Normalize without the final join.
func (n *Normalizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	lowered := apostrophes.Replace(cases.Lower(language.English).String(text))

	var tokens []string
	state := -1
	var word string
	for len(lowered) > 0 {
		word, lowered, state = uniseg.FirstWordInString(lowered, state)
		if isNoise(word) {
			continue
		}
		tokens = append(tokens, n.lemma(word))
	}
	return tokens
}

// Keywords normalizes text and removes stop words.
func (n *Normalizer) Keywords(text string) KeywordSet {
	return filterTokens(n.Tokens(text))
}

// lemma applies the lemmatizer until the token stops changing so that
// normalizing a normalized string is a no-op.
func (n *Normalizer) lemma(token string) string {
	for i := 0; i < maxLemmaPasses; i++ {
		next := n.lemmatizer.Lemma(token)
		if next == "" || next == token {
			break
		}
		token = next
	}
	return token
}

func isNoise(segment string) bool {
	if strings.TrimSpace(segment) == "" {
		return true
	}
	if utf8.RuneCountInString(segment) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(segment)
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
