package harvest

import (
	"context"

	"github.com/hazyhaar/moisson/corpus"
	"github.com/hazyhaar/moisson/harvest/internal/gdelt"
)

// harvestGDELT walks the window month by month through the news-indexing
// API. Failed months are logged and skipped; the remaining months still
// contribute rows, so the adapter only reports an error when every month
// failed.
func (s *Service) harvestGDELT(ctx context.Context, window Window) ([]corpus.RawRecord, error) {
	client := gdelt.New(s.fetcher, gdelt.Config{
		BaseURL:    s.gdeltBase,
		Query:      s.config.Sources.GDELT.GKGSearch,
		MaxRecords: s.config.Sources.GDELT.MaxRecords,
		Pace:       s.pace,
	})

	articles, failed := client.Articles(ctx, window.Since, window.Until)
	for _, f := range failed {
		s.logger.Warn("harvest: gdelt month failed", "month", f.Start.Format("2006-01"), "error", f.Err)
	}

	rows := make([]corpus.RawRecord, 0, len(articles))
	for i := range articles {
		rows = append(rows, gdeltRecord(&articles[i]))
	}

	var err error
	if len(failed) > 0 && len(articles) == 0 {
		err = failed[0]
	}
	return rows, err
}

func gdeltRecord(a *gdelt.Article) corpus.RawRecord {
	datePub := ""
	if t, ok := a.SeenTime(); ok {
		datePub = t.Format(corpus.DateFormat)
	}
	return corpus.RawRecord{
		"date_pub":       datePub,
		"type_source":    "Presse",
		"titre":          corpus.CleanText(a.Title),
		"lien":           a.URL,
		"langue":         a.Language,
		"source_name":    a.SourceCountry,
		"source_type":    "gdelt",
		"source_country": a.SourceCountry,
	}
}
