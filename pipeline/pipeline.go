// Package pipeline orchestrates the clean stage: merge raw batch tables,
// normalize, deduplicate, assemble ids, optionally enrich, and write the
// final corpus table.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/moisson/corpus"
	"github.com/hazyhaar/moisson/table"
)

// ErrNoRawTables reports a clean run with no input batch tables. This is
// fatal for the stage, unlike "zero rows survived", which is a valid
// outcome.
var ErrNoRawTables = errors.New("pipeline: no raw tables found")

// Extractor is the injectable full-text enrichment capability.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// CleanOptions configures one clean run.
type CleanOptions struct {
	// RawDir holds the raw batch tables written by harvest.
	RawDir string
	// OutPath is the final corpus table path.
	OutPath string
	// Threshold is the same-domain dedup similarity bound; non-positive
	// means the default of 90.
	Threshold int
	// Extractor, when set, enriches each surviving record with fulltext.
	Extractor Extractor
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Clean runs the full stage and returns the number of rows written.
func Clean(ctx context.Context, opts CleanOptions) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	raws, err := table.ReadDir(opts.RawDir, logger)
	if err != nil {
		return 0, fmt.Errorf("pipeline: %w", err)
	}
	if len(raws) == 0 {
		return 0, ErrNoRawTables
	}
	logger.Info("pipeline: raw tables loaded", "rows", len(raws))

	records := corpus.FilterTitled(corpus.Normalize(raws))
	deduped := corpus.Deduplicate(records, opts.Threshold)
	final := corpus.Assemble(deduped)
	logger.Info("pipeline: deduplicated",
		"normalized", len(records), "kept", len(final))

	withFulltext := opts.Extractor != nil
	if withFulltext {
		enrich(ctx, final, opts.Extractor, logger)
	}

	if err := table.WriteCorpus(opts.OutPath, final, withFulltext); err != nil {
		return 0, fmt.Errorf("pipeline: %w", err)
	}
	logger.Info("pipeline: corpus written", "path", opts.OutPath, "rows", len(final))
	return len(final), nil
}

// enrich fills Fulltext in place. Per-record failures degrade to an empty
// fulltext; they never fail the run.
func enrich(ctx context.Context, records []corpus.Record, ex Extractor, logger *slog.Logger) {
	for i := range records {
		if records[i].Lien == "" {
			continue
		}
		text, err := ex.Extract(ctx, records[i].Lien)
		if err != nil {
			logger.Debug("pipeline: extraction failed", "lien", records[i].Lien, "error", err)
			continue
		}
		records[i].Fulltext = text
	}
}
