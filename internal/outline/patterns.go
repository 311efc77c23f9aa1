package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PatternLibrary recognises heading-shaped text regardless of typography.
// It is built once and shared read-only.
type PatternLibrary struct {
	numbered      []*regexp.Regexp
	maxCapsWords  int
	maxTitleWords int
}

// DefaultPatterns returns the standard library: numbered sections, chapter,
// section and appendix labels, short ALL-CAPS lines and short title-case
// lines.
func DefaultPatterns() *PatternLibrary {
	return &PatternLibrary{
		numbered: []*regexp.Regexp{
			regexp.MustCompile(`^\d+\.?\s+\p{Lu}[^.]*$`),           // 1. Introduction
			regexp.MustCompile(`^\d+\.\d+\.?\s+\p{Lu}[^.]*$`),      // 1.1 Scope
			regexp.MustCompile(`^\d+\.\d+\.\d+\.?\s+\p{Lu}[^.]*$`), // 1.1.1 Terms
			regexp.MustCompile(`^(?i:chapter)\s+\d+\b`),            // Chapter 3
			regexp.MustCompile(`^(?i:section)\s+\d+\b`),            // Section 2
			regexp.MustCompile(`^(?i:appendix)\s+[A-Z]\b`),         // Appendix A
		},
		maxCapsWords:  10,
		maxTitleWords: 8,
	}
}

// Match reports whether text looks like a heading.
func (l *PatternLibrary) Match(text string) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < 2 {
		return false
	}
	for _, re := range l.numbered {
		if re.MatchString(text) {
			return true
		}
	}
	words := strings.Fields(text)
	if isAllCaps(text) && len(words) <= l.maxCapsWords {
		return true
	}
	return len(words) <= l.maxTitleWords && isTitleCase(words) && !endsWithPunctuation(text)
}

// isAllCaps reports whether text has at least two letters and no lowercase.
func isAllCaps(text string) bool {
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}

// minorWords may stay lowercase inside a title-case line.
var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "but": true,
	"by": true, "for": true, "from": true, "in": true, "into": true, "of": true,
	"on": true, "or": true, "the": true, "to": true, "with": true, "vs": true,
}

// isTitleCase reports whether the first word and every non-minor word start
// with an uppercase letter. Words starting with a digit or symbol are neutral.
func isTitleCase(words []string) bool {
	if len(words) == 0 {
		return false
	}
	sawLetter := false
	for i, w := range words {
		first := []rune(w)[0]
		if !unicode.IsLetter(first) {
			continue
		}
		sawLetter = true
		if unicode.IsUpper(first) {
			continue
		}
		if i == 0 || !minorWords[strings.ToLower(w)] {
			return false
		}
	}
	return sawLetter
}

func endsWithPunctuation(text string) bool {
	switch text[len(text)-1] {
	case '.', ',', ';', '!', '?':
		return true
	}
	return false
}
