package persona

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Fold case-folds s for caseless comparison. A Caser is stateful, so each
// call builds its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContentWords returns the distinct folded words of text longer than three
// characters that are not stop words, in first-seen order.
func ContentWords(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		w = strings.Trim(w, "-")
		if len([]rune(w)) <= 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// stopWords is a set of common English words that carry no topic.
var stopWords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true,
	"have": true, "been": true, "were": true, "they": true,
	"their": true, "will": true, "would": true, "could": true,
	"should": true, "about": true, "which": true, "there": true,
	"these": true, "those": true, "then": true, "than": true,
	"them": true, "what": true, "when": true, "where": true,
	"your": true, "more": true, "some": true, "such": true,
	"only": true, "also": true, "very": true, "just": true,
	"into": true, "over": true, "each": true, "does": true,
	"most": true, "after": true, "before": true, "other": true,
	"being": true, "same": true, "both": true, "between": true,
	"need": true, "needs": true, "want": true, "make": true,
	"like": true, "using": true, "used": true, "here": true,
	"while": true, "within": true, "across": true, "during": true,
}
