package harvest

import (
	"context"

	"github.com/hazyhaar/moisson/corpus"
	"github.com/hazyhaar/moisson/harvest/internal/feed"
)

// harvestRSS pulls every feed in urls and maps entries to raw records.
// A feed that fails to fetch or parse is logged and skipped; entries whose
// date resolves outside the window are dropped, undated entries pass
// through unfiltered.
func (s *Service) harvestRSS(ctx context.Context, urls []string, window Window) ([]corpus.RawRecord, error) {
	var rows []corpus.RawRecord
	var lastErr error
	for _, url := range urls {
		body, err := s.fetcher.Get(ctx, url)
		if err != nil {
			s.logger.Warn("harvest: feed fetch failed", "url", url, "error", err)
			lastErr = err
			s.pace(ctx)
			continue
		}
		f, err := feed.Parse(body)
		if err != nil {
			s.logger.Warn("harvest: feed parse failed", "url", url, "error", err)
			lastErr = err
			s.pace(ctx)
			continue
		}
		for _, entry := range f.Entries {
			if raw, ok := rssRecord(entry, window); ok {
				rows = append(rows, raw)
			}
		}
		s.pace(ctx)
	}
	return rows, lastErr
}

func rssRecord(entry feed.Entry, window Window) (corpus.RawRecord, bool) {
	raw := corpus.RawRecord{
		"published": entry.Published,
		"updated":   entry.Updated,
		"source":    entry.Source,
		"author":    entry.Author,
	}

	datePub := ""
	// Date chain: published, then updated. An entry carrying neither is
	// kept with an unknown date.
	if v, ok := raw.First("published", "updated"); ok {
		if t, parsed := corpus.ParseDate(v); parsed {
			if !window.Contains(t) {
				return nil, false
			}
			datePub = t.Format(corpus.DateFormat)
		}
	}

	sourceName, _ := raw.First("source", "author")

	return corpus.RawRecord{
		"date_pub":         datePub,
		"type_source":      "Presse",
		"titre":            corpus.CleanText(entry.Title),
		"lien":             entry.Link,
		"extrait_citation": corpus.CleanText(entry.Summary),
		"source_name":      corpus.CleanText(sourceName),
		"source_type":      "rss",
	}, true
}
