package nlp

// IsStopWord reports whether word is in the fixed English stop-word list.
// The word must already be lowercase.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// StopWords returns a copy of the stop-word list.
func StopWords() []string {
	out := make([]string, len(stopWordList))
	copy(out, stopWordList)
	return out
}

var stopWordList = []string{
	// pronouns
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
	"you", "your", "yours", "yourself", "yourselves",
	"he", "him", "his", "himself", "she", "her", "hers", "herself",
	"it", "its", "itself", "they", "them", "their", "theirs", "themselves",
	"what", "which", "who", "whom", "this", "that", "these", "those",
	// auxiliaries
	"am", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "having", "do", "does", "did", "doing",
	// function words
	"a", "an", "the", "and", "but", "if", "or", "because", "as", "until", "while",
	"of", "at", "by", "for", "with", "about", "against", "between", "into", "through",
	"during", "before", "after", "above", "below", "to", "from", "up", "down",
	"in", "out", "on", "off", "over", "under", "again", "further", "then", "once",
	"here", "there", "when", "where", "why", "how", "all", "any", "both", "each",
	"few", "more", "most", "other", "some", "such", "no", "nor", "not", "only",
	"own", "same", "so", "than", "too", "very", "can", "will", "just", "should", "now",
	// contraction fragments
	"s", "t", "d", "ll", "m", "o", "re", "ve", "y", "don", "ain", "aren", "couldn",
	"didn", "doesn", "hadn", "hasn", "haven", "isn", "ma", "mightn", "mustn",
	"needn", "shan", "shouldn", "wasn", "weren", "won", "wouldn",
	// joined contractions, as produced by word-boundary tokenization
	"i'm", "i've", "i'll", "i'd", "you're", "you've", "you'll", "you'd",
	"he's", "she's", "it's", "we're", "we've", "they're", "they've",
	"that's", "there's", "what's", "don't", "doesn't", "didn't", "isn't",
	"aren't", "wasn't", "weren't", "can't", "won't", "wouldn't", "shouldn't",
	"couldn't", "haven't", "hasn't",
}

var stopWords = func() map[string]struct{} {
	m := make(map[string]struct{}, len(stopWordList))
	for _, w := range stopWordList {
		m[w] = struct{}{}
	}
	return m
}()
