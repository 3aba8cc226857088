package harvest

import (
	"context"
	"strings"

	"github.com/hazyhaar/moisson/corpus"
	"github.com/hazyhaar/moisson/harvest/internal/openalex"
)

// harvestOpenAlex pulls academic works matching the configured query. A
// mid-run paging failure still yields the works already collected.
func (s *Service) harvestOpenAlex(ctx context.Context, window Window) ([]corpus.RawRecord, error) {
	client := openalex.New(s.fetcher, openalex.Config{
		BaseURL: s.openalexBase,
		Query:   s.config.Sources.OpenAlex.Query,
		PerPage: s.config.Sources.OpenAlex.PerPage,
		Mailto:  s.config.Sources.OpenAlex.Mailto,
		Pace:    s.pace,
	})

	works, err := client.Works(ctx, window.Since, window.Until)

	rows := make([]corpus.RawRecord, 0, len(works))
	for i := range works {
		rows = append(rows, openAlexRecord(&works[i]))
	}
	return rows, err
}

func openAlexRecord(w *openalex.Work) corpus.RawRecord {
	raw := corpus.RawRecord{
		"date_pub":    w.Date(),
		"type_source": "Académique",
		"titre":       corpus.CleanText(w.Title),
		"lien":        w.Link(),
		"langue":      w.Language,
		"mots_cles":   strings.Join(w.TopConcepts(10), ","),
		"source_type": "openalex",
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		raw["source_name"] = w.PrimaryLocation.Source.DisplayName
	}
	return raw
}
