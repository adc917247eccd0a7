// Package sanitize cleans free-text tag values received from the geodata provider.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML tags and returns HTML-escaped text, ready to be
// written into markup as is.
func Text(input string) string {
	return StrictPolicy.Sanitize(input)
}

// PlainText strips all HTML tags and returns unescaped, trimmed text.
// Use it for values that are escaped later by html/template or never reach HTML.
func PlainText(input string) string {
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(input)))
}

// Label is PlainText with a fallback for values that are empty once stripped.
func Label(input, fallback string) string {
	if text := PlainText(input); text != "" {
		return text
	}
	return fallback
}
