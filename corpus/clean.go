package corpus

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy removes every HTML element, keeping only text content.
var stripPolicy = bluemonday.StrictPolicy()

// CleanText strips HTML markup from s, decodes entities, and collapses all
// runs of whitespace to single spaces. Empty input stays empty; adapters use
// this on titles and excerpts before a record enters a raw batch.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
