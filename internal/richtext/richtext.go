// Package richtext handles the HTML that clients send as idea descriptions
// and synthesis bodies.
//
// Stored text is sanitized with a user generated content policy so it can be
// rendered as is. Analysis reads it back as markdown, where code blocks are
// fenced and can be skipped by the tokenizer.
package richtext

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer removes scripts, event handlers and javascript: URLs while
// keeping ordinary formatting. Safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer with the UGC policy
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// NewStrictSanitizer creates a sanitizer that strips every tag
func NewStrictSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns the safe subset of html
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}

// SanitizeBundle sanitizes every locale of a text bundle. The input map is
// not modified.
func (s *Sanitizer) SanitizeBundle(entries map[string]string) map[string]string {
	if entries == nil {
		return nil
	}
	out := make(map[string]string, len(entries))
	for locale, text := range entries {
		out[locale] = s.Sanitize(text)
	}
	return out
}

// Converter turns stored HTML into markdown
type Converter struct {
	sanitizer *Sanitizer
	converter *md.Converter
}

// NewConverter creates a converter that emits fenced code blocks
func NewConverter() *Converter {
	return &Converter{
		sanitizer: NewSanitizer(),
		converter: md.NewConverter("", true, &md.Options{
			CodeBlockStyle: "fenced",
			Fence:          "```",
		}),
	}
}

// ToMarkdown sanitizes html and converts it to markdown
func (c *Converter) ToMarkdown(html string) (string, error) {
	out, err := c.converter.ConvertString(c.sanitizer.Sanitize(html))
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return out, nil
}
