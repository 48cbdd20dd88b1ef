package detect

import (
	"fmt"
	"regexp"
	"strings"
)

// CountKeywords counts case-insensitive, non-overlapping occurrences of each
// keyword in text. Keywords are literal patterns. A keyword edge that is a
// word character must sit on a word boundary, so "cat" is not counted inside
// "category". Keywords with no match are left out of the result.
//
// Every keyword is validated before any counting happens; a blank keyword
// fails with ErrInvalidKeyword.
func CountKeywords(keywords []string, text string) (Counts, error) {
	matchers := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		re, err := keywordMatcher(kw)
		if err != nil {
			return Counts{}, fmt.Errorf("keyword %d: %w", i, err)
		}
		matchers[i] = re
	}

	var counts Counts
	if text == "" {
		return counts, nil
	}

	for i, kw := range keywords {
		if n := len(matchers[i].FindAllStringIndex(text, -1)); n > 0 {
			counts.Set(kw, n)
		}
	}
	return counts, nil
}

// keywordMatcher compiles a case-folding literal matcher for keyword. Runs
// of whitespace inside the keyword match any run of whitespace in the text.
// Counting and context extraction share it, so a counted keyword always has
// a context.
func keywordMatcher(keyword string) (*regexp.Regexp, error) {
	fields := strings.Fields(keyword)
	if len(fields) == 0 {
		return nil, ErrInvalidKeyword
	}

	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	expr := strings.Join(quoted, `\s+`)

	first, last := fields[0], fields[len(fields)-1]
	if isWordByte(first[0]) {
		expr = `\b` + expr
	}
	if isWordByte(last[len(last)-1]) {
		expr += `\b`
	}
	return regexp.Compile(`(?i)` + expr)
}

// isWordByte mirrors the ASCII word class used by \b.
func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}
