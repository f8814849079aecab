package ideagraph

import (
	"testing"

	graphSvc "agora/internal/domain/services/ideagraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"lower cases and drops stop words", "The Quick brown fox", []string{"quick", "brown", "fox"}},
		{"keeps apostrophes inside words", "the city's plan, 'quoted'", []string{"city's", "plan", "quoted"}},
		{"drops single letters", "a b cd", []string{"cd"}},
		{"removes code blocks", "before ```x := 1``` after", []string{"before", "after"}},
		{"unterminated code block is kept", "open ```fence", []string{"open", "fence"}},
		{"digits are words", "route 66", []string{"route", "66"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestPickLocale(t *testing.T) {
	entries := map[string]string{"fr": "bonjour", "en": "hello", "de": "hallo"}
	assert.Equal(t, "bonjour", pickLocale(entries, "fr"))
	assert.Equal(t, "hallo", pickLocale(entries, "es"), "falls back to the first locale in key order")
	assert.Equal(t, "", pickLocale(nil, "en"))
}

func TestWordCountVisitor(t *testing.T) {
	children := tree()
	texts := map[string]string{
		"r": "bikes bikes",
		"a": "bikes and buses",
		"b": "trains",
		"c": "buses",
	}

	t.Run("counts the whole subtree", func(t *testing.T) {
		v := NewWordCountVisitor(texts, nil)
		_, err := DepthFirstIDs[struct{}](children, "r", v)
		require.NoError(t, err)
		assert.Equal(t, []graphSvc.WordCount{
			{Word: "bikes", Count: 3},
			{Word: "buses", Count: 2},
			{Word: "trains", Count: 1},
		}, v.MostCommonWords(0))
	})

	t.Run("limits and breaks ties alphabetically", func(t *testing.T) {
		v := NewWordCountVisitor(map[string]string{"a": "zebra apple mango"}, nil)
		_, err := DepthFirstIDs[struct{}](children, "a", v)
		require.NoError(t, err)
		assert.Equal(t, []graphSvc.WordCount{
			{Word: "apple", Count: 1},
			{Word: "mango", Count: 1},
		}, v.MostCommonWords(2))
	})

	t.Run("posts of the start idea are weighted", func(t *testing.T) {
		v := NewWordCountVisitor(texts, map[string][]string{
			"a": {"trains trains"},
			"b": {"ignored below the start"},
		})
		v.PostWeight = 2
		_, err := DepthFirstIDs[struct{}](children, "a", v)
		require.NoError(t, err)

		counts := map[string]int{}
		for _, wc := range v.MostCommonWords(0) {
			counts[wc.Word] = wc.Count
		}
		assert.Equal(t, 4, counts["trains"])
		assert.Equal(t, 2, counts["buses"])
		assert.Equal(t, 1, counts["bikes"])
		assert.NotContains(t, counts, "ignored")
	})
}
