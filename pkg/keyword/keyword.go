package keyword

import (
	"strings"
	"unicode"
)

// stopwords excluded from keyword extraction; matching on these would make
// every chunk a candidate.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "he": {},
	"her": {}, "his": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {},
	"on": {}, "or": {}, "she": {}, "that": {}, "the": {}, "their": {},
	"they": {}, "this": {}, "to": {}, "was": {}, "were": {}, "will": {},
	"with": {}, "you": {}, "your": {},
}

// Extract returns the distinct, lowercased keywords of text, minus
// stopwords and tokens shorter than 3 runes.
func Extract(text string) []string {
	tokens := tokenize(text)

	seen := make(map[string]struct{}, len(tokens))
	var keywords []string
	for _, tok := range tokens {
		if len([]rune(tok)) < 3 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

// Overlap counts how many of the query's keywords appear in candidate.
// Used as the secondary ranking signal next to vector similarity.
func Overlap(query, candidate string) int {
	candidateSet := make(map[string]struct{})
	for _, tok := range tokenize(candidate) {
		candidateSet[tok] = struct{}{}
	}

	count := 0
	for _, kw := range Extract(query) {
		if _, ok := candidateSet[kw]; ok {
			count++
		}
	}
	return count
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
