package corpus

import (
	"testing"
	"time"
)

func TestRecord_Row_MatchesColumns(t *testing.T) {
	// WHAT: Row length and order track Columns for both fulltext modes.
	// WHY: The CSV writer zips headers and rows positionally.
	r := Record{
		ID:      3,
		DatePub: time.Date(2025, time.March, 2, 10, 0, 0, 0, time.UTC),
		Titre:   "A title",
		Lien:    "https://example.com/a",
	}
	for _, withFulltext := range []bool{false, true} {
		cols := Columns(withFulltext)
		row := r.Row(withFulltext)
		if len(cols) != len(row) {
			t.Fatalf("withFulltext=%v: %d columns vs %d cells", withFulltext, len(cols), len(row))
		}
	}
	row := r.Row(false)
	if row[0] != "3" {
		t.Errorf("id cell: %q", row[0])
	}
	if row[1] != "2025-03-02T10:00:00Z" {
		t.Errorf("date cell: %q", row[1])
	}
	if row[3] != "A title" {
		t.Errorf("titre cell: %q", row[3])
	}
}

func TestRecord_Row_NullDateIsEmpty(t *testing.T) {
	// WHAT: A zero DatePub serializes as an empty cell.
	// WHY: Null dates must round-trip as empty strings, not epoch values.
	r := Record{ID: 1, Titre: "Undated"}
	if got := r.Row(false)[1]; got != "" {
		t.Errorf("date cell: %q, want empty", got)
	}
}

func TestColumns_FulltextAppendedLast(t *testing.T) {
	// WHAT: The fulltext column is appended after the canonical schema.
	cols := Columns(true)
	if cols[len(cols)-1] != "fulltext" {
		t.Errorf("last column: %q", cols[len(cols)-1])
	}
	if len(cols) != len(Schema)+1 {
		t.Errorf("columns: %d, want %d", len(cols), len(Schema)+1)
	}
	// Columns must not alias the Schema backing array.
	if len(Columns(false)) != len(Schema) {
		t.Errorf("base columns: %d", len(Columns(false)))
	}
}
