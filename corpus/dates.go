package corpus

import (
	"strings"
	"time"
)

// dateLayouts lists the accepted date_pub shapes, tried in order: structured
// timestamps first, then ISO dates, then the loose formats seen in RSS
// pubDate headers and scraped pages.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2006/01/02",
	"20060102T150405Z",
	"20060102150405",
	"20060102",
}

// ParseDate resolves a publication date string to a timestamp. It accepts
// any of the layouts above and reports false for anything else, including
// the empty string; callers keep the record and treat the date as unknown.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
