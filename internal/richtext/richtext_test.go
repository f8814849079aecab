package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name     string
		input    string
		contains string
		excludes string
	}{
		{"drops scripts", `<p>hi</p><script>alert(1)</script>`, "<p>hi</p>", "script"},
		{"drops event handlers", `<a href="https://example.com" onclick="x()">go</a>`, "https://example.com", "onclick"},
		{"drops javascript urls", `<a href="javascript:alert(1)">go</a>`, "go", "javascript"},
		{"keeps formatting", `<ul><li><strong>bold</strong></li></ul>`, "<strong>bold</strong>", "<script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Sanitize(tt.input)
			assert.Contains(t, out, tt.contains)
			assert.NotContains(t, out, tt.excludes)
		})
	}
}

func TestSanitizeBundle(t *testing.T) {
	in := map[string]string{"en": "<b>yes</b><script>x</script>", "fr": "oui"}
	out := NewSanitizer().SanitizeBundle(in)
	assert.Equal(t, map[string]string{"en": "<b>yes</b>", "fr": "oui"}, out)
	assert.Contains(t, in["en"], "script", "the input is left alone")
	assert.Nil(t, NewSanitizer().SanitizeBundle(nil))
}

func TestStrictSanitizer(t *testing.T) {
	assert.Equal(t, "plain", NewStrictSanitizer().Sanitize("<em>plain</em>"))
}

func TestToMarkdown(t *testing.T) {
	c := NewConverter()
	out, err := c.ToMarkdown(`<p>Ride <strong>bikes</strong></p><pre><code>x := 1</code></pre><script>bad()</script>`)
	require.NoError(t, err)
	assert.Contains(t, out, "**bikes**")
	assert.Contains(t, out, "```")
	assert.NotContains(t, out, "bad()")
}
