package corpus

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func titles(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Titre
	}
	return out
}

func TestDeduplicate_SameDomainReprint(t *testing.T) {
	// WHAT: Two near-identical titles on the same domain collapse to one,
	// keeping the newer record.
	// WHY: Same-domain reprints use the lower threshold branch.
	records := []Record{
		{Titre: "City council approves new budget", DatePub: day(1), Domain: "news.example.com"},
		{Titre: "City council approves new budget plan", DatePub: day(3), Domain: "news.example.com"},
	}
	got := Deduplicate(records, 90)
	if len(got) != 1 {
		t.Fatalf("records: got %d, want 1 (%v)", len(got), titles(got))
	}
	if got[0].Titre != "City council approves new budget plan" {
		t.Errorf("kept: got %q, want the newer record", got[0].Titre)
	}
}

func TestDeduplicate_CrossDomainRequiresNearExact(t *testing.T) {
	// WHAT: Across domains a score of 100 collapses, a score around 90
	// does not.
	// WHY: Cross-domain absorption uses the stricter bound so that
	// different outlets covering the same story both survive.
	records := []Record{
		{Titre: "AI bias in hiring tools", DatePub: day(2), Domain: "a.example.com"},
		{Titre: "AI bias in hiring tools", DatePub: day(1), Domain: "b.example.com"},
		{Titre: "Report on water policy", DatePub: day(2), Domain: "a.example.com"},
		{Titre: "Report on energy policy", DatePub: day(1), Domain: "b.example.com"},
	}
	got := Deduplicate(records, 90)
	if len(got) != 3 {
		t.Fatalf("records: got %d, want 3 (%v)", len(got), titles(got))
	}
}

func TestDeduplicate_EmptyDomainNeverMatchesSameDomainBranch(t *testing.T) {
	// WHAT: Two records with empty domains only collapse at the
	// near-exact bound.
	// WHY: An empty domain is unknown provenance, not shared provenance.
	records := []Record{
		{Titre: "City council approves new budget", DatePub: day(2)},
		{Titre: "City council approves new budget plan today", DatePub: day(1)},
	}
	got := Deduplicate(records, 90)
	if len(got) != 2 {
		t.Fatalf("records: got %d, want 2 (%v)", len(got), titles(got))
	}
}

func TestDeduplicate_NewestSurvivorOrdering(t *testing.T) {
	// WHAT: Output is ordered newest first, with null dates last.
	// WHY: Survivors keep the comparison-pass order, which starts from
	// the most recent record.
	records := []Record{
		{Titre: "Undated report", Domain: "c.example.com"},
		{Titre: "Old story", DatePub: day(1), Domain: "a.example.com"},
		{Titre: "New story", DatePub: day(5), Domain: "b.example.com"},
	}
	got := Deduplicate(records, 90)
	want := []string{"New story", "Old story", "Undated report"}
	if len(got) != 3 {
		t.Fatalf("records: got %d, want 3", len(got))
	}
	for i, w := range want {
		if got[i].Titre != w {
			t.Errorf("position %d: got %q, want %q", i, got[i].Titre, w)
		}
	}
}

func TestDeduplicate_SurvivorAbsorbsAllLaterMatches(t *testing.T) {
	// WHAT: A kept record absorbs every later match itself, in one pass.
	// WHY: The newest title is a token subset of both older rewrites, so
	// it scores 100 against each and both are absorbed.
	records := []Record{
		{Titre: "alpha beta gamma delta epsilon", DatePub: day(3), Domain: "x.example.com"},
		{Titre: "alpha beta gamma delta epsilon zeta eta", DatePub: day(2), Domain: "x.example.com"},
		{Titre: "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu", DatePub: day(1), Domain: "x.example.com"},
	}
	got := Deduplicate(records, 90)
	// The newest title is a subset of both others, so it absorbs both.
	if len(got) != 1 {
		t.Fatalf("records: got %d, want 1 (%v)", len(got), titles(got))
	}
	if got[0].Titre != "alpha beta gamma delta epsilon" {
		t.Errorf("kept: got %q", got[0].Titre)
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	// WHAT: Running dedup on its own output changes nothing.
	// WHY: Every survivor already failed to match every other survivor.
	records := []Record{
		{Titre: "AI bias in hiring tools", DatePub: day(2), Domain: "a.example.com"},
		{Titre: "AI bias in hiring tools", DatePub: day(1), Domain: "a.example.com"},
		{Titre: "Municipal water outage", DatePub: day(1), Domain: "b.example.com"},
	}
	once := Deduplicate(records, 90)
	twice := Deduplicate(once, 90)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed count: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Titre != twice[i].Titre {
			t.Errorf("position %d: %q -> %q", i, once[i].Titre, twice[i].Titre)
		}
	}
}

func TestDeduplicate_ZeroThresholdUsesDefault(t *testing.T) {
	// WHAT: A non-positive threshold falls back to the default of 90.
	// WHY: Callers passing an unset config value get sane behavior.
	records := []Record{
		{Titre: "City council approves new budget", DatePub: day(1), Domain: "n.example.com"},
		{Titre: "City council approves new budget plan", DatePub: day(2), Domain: "n.example.com"},
	}
	if got := Deduplicate(records, 0); len(got) != 1 {
		t.Errorf("records: got %d, want 1", len(got))
	}
}

func TestDeduplicate_InputUntouched(t *testing.T) {
	// WHAT: The input slice keeps its original order after dedup.
	// WHY: Callers may still hold the pre-dedup view.
	records := []Record{
		{Titre: "Old story", DatePub: day(1), Domain: "a.example.com"},
		{Titre: "New story", DatePub: day(5), Domain: "b.example.com"},
	}
	Deduplicate(records, 90)
	if records[0].Titre != "Old story" || records[1].Titre != "New story" {
		t.Errorf("input reordered: %v", titles(records))
	}
}

func TestAssemble_DenseIDs(t *testing.T) {
	// WHAT: Assemble numbers records 1..N in order.
	// WHY: Downstream CSV consumers expect dense, gap-free identifiers.
	records := []Record{{Titre: "a"}, {Titre: "b"}, {Titre: "c"}}
	got := Assemble(records)
	for i, r := range got {
		if r.ID != i+1 {
			t.Errorf("record %d: id %d, want %d", i, r.ID, i+1)
		}
	}
	if records[0].ID != 0 {
		t.Errorf("input mutated: id %d", records[0].ID)
	}
}

func TestAssemble_Empty(t *testing.T) {
	// WHAT: Assemble on an empty slice returns an empty slice.
	if got := Assemble(nil); len(got) != 0 {
		t.Errorf("records: got %d, want 0", len(got))
	}
}

func TestDeduplicate_EndToEndPipeline(t *testing.T) {
	// WHAT: Normalize, filter, dedup and assemble a small raw batch.
	// WHY: Exercises the full record path the cleaning stage runs.
	raws := []RawRecord{
		{"titre": "  AI bias in hiring tools ", "lien": "https://a.example.com/1", "date_pub": "2025-03-02T00:00:00Z"},
		{"titre": "AI bias in hiring tools", "lien": "https://b.example.com/2", "date_pub": "2025-03-01T00:00:00Z"},
		{"titre": "", "lien": "https://b.example.com/3", "date_pub": "2025-03-01T00:00:00Z"},
		{"titre": "Municipal water outage", "lien": "https://c.example.com/4", "date_pub": "not a date"},
	}
	records := Assemble(Deduplicate(FilterTitled(Normalize(raws)), 90))
	if len(records) != 2 {
		t.Fatalf("records: got %d, want 2 (%v)", len(records), titles(records))
	}
	if records[0].ID != 1 || records[0].Titre != "AI bias in hiring tools" {
		t.Errorf("first record: id %d titre %q", records[0].ID, records[0].Titre)
	}
	if records[1].ID != 2 || records[1].Titre != "Municipal water outage" {
		t.Errorf("second record: id %d titre %q", records[1].ID, records[1].Titre)
	}
	if !records[1].DatePub.IsZero() {
		t.Errorf("unparseable date should stay null, got %v", records[1].DatePub)
	}
}
