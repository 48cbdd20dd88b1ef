package detect

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	corpus := []string{
		"",
		" ",
		"hello world",
		"hello world.",
		"Hello world",
		"product launch today.",
		"product launch today!",
	}

	seen := make(map[string]string, len(corpus))
	for _, text := range corpus {
		h := Fingerprint(text)
		assert.Equal(t, h, Fingerprint(text), "fingerprint must be deterministic")
		assert.Len(t, h, 64)
		if prev, ok := seen[h]; ok {
			t.Fatalf("Fingerprint(%q) collides with Fingerprint(%q)", text, prev)
		}
		seen[h] = text
	}

	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Fingerprint(""))
}

func TestCountKeywords(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		text     string
		want     map[string]int
	}{
		{"case insensitive", []string{"launch"}, "Launch day: the LAUNCH went well", map[string]int{"launch": 2}},
		{"whole word only", []string{"cat"}, "The cat sat in the category. CAT!", map[string]int{"cat": 2}},
		{"symbol edge", []string{"c++"}, "I like c++ and C++.", map[string]int{"c++": 2}},
		{"regexp meta is literal", []string{"a.b"}, "a.b axb a.b", map[string]int{"a.b": 2}},
		{"multi word", []string{"foo bar"}, "Foo Bar and foo bar", map[string]int{"foo bar": 2}},
		{"non overlapping", []string{"a-a"}, "a-a-a", map[string]int{"a-a": 1}},
		{"zero matches absent", []string{"launch", "rocket"}, "launch", map[string]int{"launch": 1}},
		{"empty text", []string{"launch"}, "", map[string]int{}},
		{"no keywords", nil, "launch", map[string]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CountKeywords(tt.keywords, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Map())

			for _, kw := range got.Keys() {
				assert.Contains(t, tt.keywords, kw)
				n, _ := got.Get(kw)
				assert.Positive(t, n)
			}
		})
	}
}

func TestCountKeywords_OrderFollowsKeywordList(t *testing.T) {
	got, err := CountKeywords([]string{"zeta", "missing", "alpha"}, "alpha beta zeta")
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, got.Keys())
}

func TestCountKeywords_DuplicatesCollapse(t *testing.T) {
	got, err := CountKeywords([]string{"launch", "rocket", "launch"}, "launch rocket launch")
	require.NoError(t, err)
	assert.Equal(t, []string{"launch", "rocket"}, got.Keys())
	n, _ := got.Get("launch")
	assert.Equal(t, 2, n)
}

func TestCountKeywords_InvalidKeyword(t *testing.T) {
	for _, kw := range []string{"", "   ", "\t\n"} {
		_, err := CountKeywords([]string{"ok", kw}, "ok")
		require.ErrorIs(t, err, ErrInvalidKeyword, "keyword %q", kw)
	}

	_, err := CountKeywords([]string{""}, "")
	require.ErrorIs(t, err, ErrInvalidKeyword)
}

func TestCountKeywords_Idempotent(t *testing.T) {
	keywords := []string{"launch", "product"}
	text := "product launch today. Another product launch tomorrow."

	first, err := CountKeywords(keywords, text)
	require.NoError(t, err)
	second, err := CountKeywords(keywords, text)
	require.NoError(t, err)

	assert.Equal(t, first.Keys(), second.Keys())
	assert.Equal(t, first.Map(), second.Map())
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		previous map[string]int
		current  map[string]int
		want     []string
	}{
		{"first appearance", map[string]int{}, map[string]int{"x": 1}, []string{"x"}},
		{"unchanged", map[string]int{"x": 1}, map[string]int{"x": 1}, []string{}},
		{"decreased", map[string]int{"x": 2}, map[string]int{"x": 1}, []string{}},
		{"increased", map[string]int{"x": 1}, map[string]int{"x": 2}, []string{"x"}},
		{"gone from page", map[string]int{"x": 3}, map[string]int{}, []string{}},
		{"nothing before", nil, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(CountsFromMap(tt.previous), CountsFromMap(tt.current))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiff_FollowsCurrentOrder(t *testing.T) {
	var previous, current Counts
	previous.Set("beta", 1)
	current.Set("gamma", 1)
	current.Set("beta", 4)
	current.Set("alpha", 2)

	assert.Equal(t, []string{"gamma", "beta", "alpha"}, Diff(previous, current))
}

func TestCounts_SetNonPositiveRemoves(t *testing.T) {
	var c Counts
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 0)
	c.Set("c", -1)

	assert.Equal(t, []string{"b"}, c.Keys())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCounts_JSONKeepsOrder(t *testing.T) {
	var c Counts
	c.Set("zeta", 3)
	c.Set("alpha", 1)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":3,"alpha":1}`, string(data))
	assert.Equal(t, `{"zeta":3,"alpha":1}`, string(data))

	var decoded Counts
	require.NoError(t, json.Unmarshal([]byte(`{"b": 2, "a": 1}`), &decoded))
	assert.Equal(t, []string{"b", "a"}, decoded.Keys())

	require.NoError(t, json.Unmarshal([]byte(`null`), &decoded))
	assert.Zero(t, decoded.Len())

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &decoded))
}

func TestExtractContexts(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		text     string
		key      string
		want     []string
	}{
		{
			name:     "two sentences",
			keywords: []string{"foo bar"},
			text:     "a b foo bar c d. e f foo bar g.",
			key:      "foo bar",
			want:     []string{"a b foo bar c d.", "e f foo bar g."},
		},
		{
			name:     "identical windows deduplicated",
			keywords: []string{"go"},
			text:     "Go is fun. Go is fun.",
			key:      "go",
			want:     []string{"Go is fun."},
		},
		{
			name:     "punctuation and case ignored for matching",
			keywords: []string{"launch"},
			text:     "Big LAUNCH, today!",
			key:      "launch",
			want:     []string{"Big LAUNCH, today!"},
		},
		{
			name:     "terminator on keyword token ends window",
			keywords: []string{"launch"},
			text:     "we launch. next time",
			key:      "launch",
			want:     []string{"we launch."},
		},
		{
			name:     "phrase after repeated token",
			keywords: []string{"foo bar"},
			text:     "foo foo bar",
			key:      "foo bar",
			want:     []string{"foo foo bar"},
		},
		{
			name:     "phrase running past end of text",
			keywords: []string{"foo bar"},
			text:     "x foo",
			key:      "foo bar",
			want:     []string{},
		},
		{
			name:     "whitespace runs collapsed",
			keywords: []string{"launch"},
			text:     "a\n\n b  launch c.",
			key:      "launch",
			want:     []string{"a b launch c."},
		},
		{
			name:     "keyword normalized",
			keywords: []string{"  Foo   Bar "},
			text:     "the foo bar.",
			key:      "foo bar",
			want:     []string{"the foo bar."},
		},
		{
			name:     "keyword inside hyphenated token",
			keywords: []string{"launch"},
			text:     "The pre-launch event. Later.",
			key:      "launch",
			want:     []string{"The pre-launch event."},
		},
		{
			name:     "keyword with apostrophe",
			keywords: []string{"don't"},
			text:     "You don't stop.",
			key:      "don't",
			want:     []string{"You don't stop."},
		},
		{
			name:     "unmatched keyword indexed",
			keywords: []string{"missing"},
			text:     "nothing here.",
			key:      "missing",
			want:     []string{},
		},
		{
			name:     "empty text",
			keywords: []string{"launch"},
			text:     "",
			key:      "launch",
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractContexts(tt.keywords, tt.text)
			require.NoError(t, err)
			require.Contains(t, got, tt.key)
			assert.Equal(t, tt.want, got[tt.key])
		})
	}
}

func TestExtractContexts_EveryCountedKeywordHasContext(t *testing.T) {
	tests := []struct {
		keyword string
		text    string
	}{
		{"c++", "I like c++ a lot."},
		{"don't", "You don't stop."},
		{"launch", "The pre-launch event."},
		{"e-mail", "Send e-mail now."},
		{"Launch", "product LAUNCH today."},
		{"foo bar", "a foo\nbar b."},
		{"a.b", "see a.b here."},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			counts, err := CountKeywords([]string{tt.keyword}, tt.text)
			require.NoError(t, err)
			n, ok := counts.Get(tt.keyword)
			require.True(t, ok, "keyword should be counted")
			require.Positive(t, n)

			contexts, err := ExtractContexts([]string{tt.keyword}, tt.text)
			require.NoError(t, err)
			assert.NotEmpty(t, contexts[NormalizeKeyword(tt.keyword)])
		})
	}
}

func TestExtractContexts_WindowBound(t *testing.T) {
	words := make([]string, 60)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}

	got, err := ExtractContexts([]string{"w55"}, strings.Join(words, " "))
	require.NoError(t, err)

	want := strings.Join(words[55-windowLimit:], " ")
	assert.Equal(t, []string{want}, got["w55"])

	got, err = ExtractContexts([]string{"w2"}, strings.Join(words, " "))
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Join(words[:2+windowLimit+1], " ")}, got["w2"])
}

func TestExtractContexts_InvalidKeyword(t *testing.T) {
	_, err := ExtractContexts([]string{"launch", " "}, "launch")
	require.ErrorIs(t, err, ErrInvalidKeyword)
}

func TestExtractContexts_Idempotent(t *testing.T) {
	keywords := []string{"foo bar", "g"}
	text := "a b foo bar c d. e f foo bar g."

	first, err := ExtractContexts(keywords, text)
	require.NoError(t, err)
	second, err := ExtractContexts(keywords, text)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMatches(t *testing.T) {
	contexts := map[string][]string{
		"foo bar": {"a foo bar.", "b foo bar."},
		"baz":     {},
	}

	got := Matches([]string{"Foo Bar", "baz", "foo bar"}, contexts)
	assert.Equal(t, []KeywordMatch{
		{Keyword: "Foo Bar", ContextText: "a foo bar."},
		{Keyword: "Foo Bar", ContextText: "b foo bar."},
	}, got)
}

func TestPipeline_FirstScrape(t *testing.T) {
	keywords := []string{"launch"}
	previousHash := "H0"
	var previousCounts Counts

	text := "product launch today."
	hash := Fingerprint(text)
	require.NotEqual(t, previousHash, hash)

	counts, err := CountKeywords(keywords, text)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"launch": 1}, counts.Map())

	notable := Diff(previousCounts, counts)
	assert.Equal(t, []string{"launch"}, notable)

	contexts, err := ExtractContexts(notable, text)
	require.NoError(t, err)
	assert.Equal(t, []string{"product launch today."}, contexts["launch"])
}
