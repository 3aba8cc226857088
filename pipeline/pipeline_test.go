package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/moisson/corpus"
	"github.com/hazyhaar/moisson/table"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeBatch(t *testing.T, dir, name string, raws []corpus.RawRecord) {
	t.Helper()
	if err := table.WriteBatch(filepath.Join(dir, name), raws); err != nil {
		t.Fatal(err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestClean_EndToEnd(t *testing.T) {
	// WHAT: Two batches holding a same-domain reprint and an unrelated
	// record clean down to two rows with dense ids.
	rawDir := t.TempDir()
	writeBatch(t, rawDir, "rss_1.csv", []corpus.RawRecord{
		{"titre": "AI bias in hiring tools", "lien": "https://x.example.com/1", "date_pub": "2024-03-01"},
		{"titre": "AI bias in hiring tools today", "lien": "https://x.example.com/2", "date_pub": "2024-03-02"},
	})
	writeBatch(t, rawDir, "gdelt_2.csv", []corpus.RawRecord{
		{"titre": "Unrelated topic", "lien": "https://y.example.com/3", "date_pub": "2024-02-01"},
	})

	out := filepath.Join(t.TempDir(), "out", "corpus.csv")
	n, err := Clean(context.Background(), CleanOptions{
		RawDir:    rawDir,
		OutPath:   out,
		Threshold: 90,
		Logger:    quiet(),
	})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if n != 2 {
		t.Fatalf("rows: got %d, want 2", n)
	}

	rows := readCSV(t, out)
	if len(rows) != 3 {
		t.Fatalf("csv rows: %d", len(rows))
	}
	if len(rows[0]) != len(corpus.Schema) {
		t.Errorf("header width: %d (fulltext must be absent)", len(rows[0]))
	}
	// Newest survivor of the same-domain pair comes first.
	if rows[1][0] != "1" || rows[1][3] != "AI bias in hiring tools today" {
		t.Errorf("first row: id %q titre %q", rows[1][0], rows[1][3])
	}
	if rows[2][0] != "2" || rows[2][3] != "Unrelated topic" {
		t.Errorf("second row: id %q titre %q", rows[2][0], rows[2][3])
	}
}

func TestClean_NoRawTables(t *testing.T) {
	// WHAT: An empty raw directory is fatal with the sentinel.
	// WHY: "never harvested" must be distinguishable from "all filtered".
	_, err := Clean(context.Background(), CleanOptions{
		RawDir:  t.TempDir(),
		OutPath: filepath.Join(t.TempDir(), "corpus.csv"),
		Logger:  quiet(),
	})
	if !errors.Is(err, ErrNoRawTables) {
		t.Errorf("error: %v, want ErrNoRawTables", err)
	}
}

func TestClean_EmptyTitlesFiltered(t *testing.T) {
	// WHAT: Records without a title are dropped, and dropping all rows is
	// a valid zero-row outcome, not an error.
	rawDir := t.TempDir()
	writeBatch(t, rawDir, "rss_1.csv", []corpus.RawRecord{
		{"titre": "", "lien": "https://x.example.com/1"},
		{"titre": "   ", "lien": "https://x.example.com/2"},
	})

	out := filepath.Join(t.TempDir(), "corpus.csv")
	n, err := Clean(context.Background(), CleanOptions{RawDir: rawDir, OutPath: out, Logger: quiet()})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if n != 0 {
		t.Errorf("rows: got %d, want 0", n)
	}
	rows := readCSV(t, out)
	if len(rows) != 1 {
		t.Errorf("csv should hold only the header, got %d rows", len(rows))
	}
}

type fakeExtractor struct {
	byURL map[string]string
	err   error
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if text, ok := f.byURL[url]; ok {
		return text, nil
	}
	return "", f.err
}

func TestClean_EnrichmentFillsFulltext(t *testing.T) {
	// WHAT: With an extractor, the fulltext column appears and failures
	// degrade to an empty cell.
	rawDir := t.TempDir()
	writeBatch(t, rawDir, "rss_1.csv", []corpus.RawRecord{
		{"titre": "First story", "lien": "https://x.example.com/ok", "date_pub": "2024-03-02"},
		{"titre": "Second story", "lien": "https://x.example.com/fail", "date_pub": "2024-03-01"},
		{"titre": "No link story", "date_pub": "2024-02-01"},
	})

	ex := &fakeExtractor{
		byURL: map[string]string{"https://x.example.com/ok": "Full body text."},
		err:   errors.New("http 404"),
	}
	out := filepath.Join(t.TempDir(), "corpus.csv")
	n, err := Clean(context.Background(), CleanOptions{
		RawDir:    rawDir,
		OutPath:   out,
		Extractor: ex,
		Logger:    quiet(),
	})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if n != 3 {
		t.Fatalf("rows: %d", n)
	}

	rows := readCSV(t, out)
	last := len(rows[0]) - 1
	if rows[0][last] != "fulltext" {
		t.Fatalf("last column: %q", rows[0][last])
	}
	if rows[1][last] != "Full body text." {
		t.Errorf("enriched cell: %q", rows[1][last])
	}
	if rows[2][last] != "" {
		t.Errorf("failed extraction should be empty: %q", rows[2][last])
	}
	if len(ex.calls) != 2 {
		t.Errorf("extractor calls: %v (linkless record must be skipped)", ex.calls)
	}
}

func TestClean_WithoutExtractorOmitsColumn(t *testing.T) {
	// WHAT: No extractor means no fulltext column at all.
	rawDir := t.TempDir()
	writeBatch(t, rawDir, "rss_1.csv", []corpus.RawRecord{
		{"titre": "A story", "lien": "https://x.example.com/1"},
	})
	out := filepath.Join(t.TempDir(), "corpus.csv")
	if _, err := Clean(context.Background(), CleanOptions{RawDir: rawDir, OutPath: out, Logger: quiet()}); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	rows := readCSV(t, out)
	if got := rows[0][len(rows[0])-1]; got == "fulltext" {
		t.Error("fulltext column present without extractor")
	}
}
