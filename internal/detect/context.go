package detect

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// windowLimit bounds how many tokens are collected on each side of a match.
const windowLimit = 49

var whitespaceRun = regexp.MustCompile(`\s\s+`)

// KeywordMatch is one occurrence of a keyword with the text around it.
type KeywordMatch struct {
	Keyword     string `json:"keyword"`
	ContextText string `json:"context_text"`
}

// NormalizeKeyword trims a keyword, collapses runs of whitespace to a single
// space and lowercases it. ExtractContexts keys its results this way.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(keyword), " "))
}

// ExtractContexts finds every occurrence of each keyword in text and
// returns the sentence-like window around it, keyed by normalized keyword.
//
// Keywords match exactly as CountKeywords matches them. The window is built
// around the token the match starts in: it extends backwards until a token
// holding a sentence terminator (. ! ?) and forwards until the token after
// one, at most windowLimit tokens each way. Identical windows for the same
// keyword are reported once. Every requested keyword has an entry, empty when
// it did not match.
func ExtractContexts(keywords []string, text string) (map[string][]string, error) {
	matchers := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		re, err := keywordMatcher(kw)
		if err != nil {
			return nil, fmt.Errorf("keyword %d: %w", i, err)
		}
		matchers[i] = re
	}

	collapsed := whitespaceRun.ReplaceAllString(text, " ")
	tokens := strings.Split(collapsed, " ")

	contexts := make(map[string][]string, len(keywords))
	for i, kw := range keywords {
		key := NormalizeKeyword(kw)
		found, ok := contexts[key]
		if !ok {
			found = []string{}
		}

		// j tracks the token holding pos; matches arrive in text order
		j, pos := 0, 0
		for _, loc := range matchers[i].FindAllStringIndex(collapsed, -1) {
			j += strings.Count(collapsed[pos:loc[0]], " ")
			pos = loc[0]
			window := contextWindow(tokens, j)
			if !slices.Contains(found, window) {
				found = append(found, window)
			}
		}
		contexts[key] = found
	}
	return contexts, nil
}

// Matches flattens ExtractContexts output into one KeywordMatch per context,
// following the order of keywords.
func Matches(keywords []string, contexts map[string][]string) []KeywordMatch {
	var matches []KeywordMatch
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		key := NormalizeKeyword(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		for _, text := range contexts[key] {
			matches = append(matches, KeywordMatch{Keyword: kw, ContextText: text})
		}
	}
	return matches
}

// contextWindow rebuilds the text around the match at token j from the
// original tokens.
func contextWindow(tokens []string, j int) string {
	var before []string
	for l := 1; l <= windowLimit && j-l >= 0; l++ {
		tok := tokens[j-l]
		if tok == "" || hasTerminator(tok) {
			break
		}
		before = append(before, tok)
	}
	slices.Reverse(before)

	var after []string
	for m := 1; m <= windowLimit && j+m < len(tokens); m++ {
		if tokens[j+m] == "" || hasTerminator(tokens[j+m-1]) {
			break
		}
		after = append(after, tokens[j+m])
	}

	window := strings.TrimSpace(strings.Join(before, " ")) + " " + tokens[j] + " " + strings.TrimSpace(strings.Join(after, " "))
	return strings.TrimSpace(window)
}

func hasTerminator(tok string) bool {
	return strings.ContainsAny(tok, ".!?")
}
