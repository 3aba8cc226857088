// Package table persists corpus tables as CSV files.
//
// Raw batch tables hold one harvest run per source and carry the adapter
// column subset; the final corpus table carries the full canonical schema.
// All writes are atomic (write .tmp then rename) so a crash never leaves a
// half-written table behind.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hazyhaar/moisson/corpus"
)

// ErrNoHeader reports a CSV file whose first row is missing.
var ErrNoHeader = errors.New("table: csv file has no header row")

// WriteBatch writes one raw harvest batch to path using the raw column
// subset. Cells absent from a record are written empty. The parent
// directory is created if needed.
func WriteBatch(path string, raws []corpus.RawRecord) error {
	rows := make([][]string, 0, len(raws)+1)
	rows = append(rows, corpus.RawColumns)
	for _, raw := range raws {
		row := make([]string, len(corpus.RawColumns))
		for i, col := range corpus.RawColumns {
			row[i] = raw[col]
		}
		rows = append(rows, row)
	}
	return writeCSV(path, rows)
}

// WriteCorpus writes the final corpus table to path. The fulltext column is
// appended only when withFulltext is set.
func WriteCorpus(path string, records []corpus.Record, withFulltext bool) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, corpus.Columns(withFulltext))
	for i := range records {
		rows = append(rows, records[i].Row(withFulltext))
	}
	return writeCSV(path, rows)
}

// ReadDir loads every .csv file under dir into a single merged slice of
// RawRecords, mapping cells by header name. Files are read in lexical
// order so merged output is deterministic across runs. Unreadable or
// malformed files are skipped with a warning rather than failing the run;
// a missing or empty directory yields zero records and no error only if
// the directory exists.
func ReadDir(dir string, logger *slog.Logger) ([]corpus.RawRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("table: read dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var merged []corpus.RawRecord
	for _, name := range names {
		path := filepath.Join(dir, name)
		records, err := readFile(path)
		if err != nil {
			logger.Warn("table: skipping unreadable batch", "path", path, "error", err)
			continue
		}
		merged = append(merged, records...)
	}
	return merged, nil
}

// readFile parses one CSV file into header-keyed records. Empty cells are
// omitted from the map so absence and emptiness collapse, which is what
// Normalize expects.
func readFile(path string) ([]corpus.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	header := rows[0]
	records := make([]corpus.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(corpus.RawRecord, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// writeCSV writes rows to path atomically.
func writeCSV(path string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("table: mkdir %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("table: create tmp: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("table: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("table: close tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("table: rename: %w", err)
	}
	return nil
}
