package ideagraph

import (
	"sort"
	"strings"
	"unicode"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"but": true, "by": true, "for": true, "from": true, "has": true, "have": true, "if": true,
	"in": true, "into": true, "is": true, "it": true, "its": true, "not": true, "of": true,
	"on": true, "or": true, "so": true, "that": true, "the": true, "their": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "to": true, "was": true,
	"we": true, "were": true, "what": true, "which": true, "will": true, "with": true,
	"would": true, "you": true,
}

// Tokenize splits text into lower-case words, dropping markup, punctuation,
// stop words and single letters.
func Tokenize(text string) []string {
	text = removeCodeBlocks(text)

	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if len([]rune(f)) < 2 || stopWords[f] {
			continue
		}
		words = append(words, f)
	}
	return words
}

func removeCodeBlocks(text string) string {
	for {
		start := strings.Index(text, "```")
		if start == -1 {
			return text
		}
		end := strings.Index(text[start+3:], "```")
		if end == -1 {
			return text
		}
		text = text[:start] + text[start+end+6:]
	}
}

// pickLocale returns the entry for locale, or the first entry in key order.
func pickLocale(entries map[string]string, locale string) string {
	if text, ok := entries[locale]; ok {
		return text
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return entries[keys[0]]
}
