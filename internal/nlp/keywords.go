package nlp

import (
	"sort"
	"strings"
)

// KeywordSet is an unordered set of content-bearing tokens.
type KeywordSet map[string]struct{}

// NewKeywordSet collects words into a set.
func NewKeywordSet(words ...string) KeywordSet {
	s := make(KeywordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s KeywordSet) Len() int { return len(s) }

func (s KeywordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// IntersectionSize counts the words present in both sets.
func (s KeywordSet) IntersectionSize(other KeywordSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for w := range small {
		if large.Contains(w) {
			n++
		}
	}
	return n
}

// Sorted returns the members in lexical order.
func (s KeywordSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// FilterStopWords splits an already-normalized string on whitespace and drops stop words.
func FilterStopWords(normalized string) KeywordSet {
	return filterTokens(strings.Fields(normalized))
}

func filterTokens(tokens []string) KeywordSet {
	s := make(KeywordSet, len(tokens))
	for _, t := range tokens {
		if IsStopWord(t) {
			continue
		}
		s[t] = struct{}{}
	}
	return s
}
