package runlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/moisson/dbopen"
	"github.com/hazyhaar/moisson/harvest/internal/runlog"
)

func newStore(t *testing.T) *runlog.Store {
	t.Helper()
	return &runlog.Store{DB: dbopen.OpenMemory(t, dbopen.WithSchema(runlog.Schema))}
}

func TestInsertAndHistory(t *testing.T) {
	// WHAT: Inserted entries come back from History newest first.
	s := newStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []*runlog.Entry{
		{Source: "rss:policywatch", URL: "https://p.example.com/feed", Status: runlog.StatusOK, Rows: 12, FetchedAt: base},
		{Source: "rss:policywatch", URL: "https://p.example.com/feed", Status: runlog.StatusError, StatusCode: 503, Reason: "status", ErrorMessage: "http 503", FetchedAt: base.Add(time.Hour)},
		{Source: "openalex", Status: runlog.StatusOK, Rows: 200, FetchedAt: base},
	}
	for _, e := range entries {
		if err := s.Insert(ctx, e); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := s.History(ctx, "rss:policywatch", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries: got %d, want 2", len(got))
	}
	if got[0].Status != runlog.StatusError || got[0].StatusCode != 503 || got[0].Reason != "status" {
		t.Errorf("newest entry: %+v", got[0])
	}
	if got[1].Rows != 12 {
		t.Errorf("oldest entry rows: %d", got[1].Rows)
	}
	if !got[1].FetchedAt.Equal(base) {
		t.Errorf("fetched_at round trip: %v", got[1].FetchedAt)
	}
}

func TestInsert_DefaultsFetchedAt(t *testing.T) {
	// WHAT: An entry without FetchedAt gets stamped on insert.
	s := newStore(t)
	e := &runlog.Entry{Source: "gdelt", Status: runlog.StatusOK}
	if err := s.Insert(context.Background(), e); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if e.FetchedAt.IsZero() {
		t.Error("FetchedAt not stamped")
	}
}

func TestHistory_LimitAndUnknownSource(t *testing.T) {
	// WHAT: The limit caps results and an unknown source yields none.
	s := newStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Insert(ctx, &runlog.Entry{Source: "rss:x", Status: runlog.StatusOK}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	got, err := s.History(ctx, "rss:x", 3)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("entries: got %d, want 3", len(got))
	}
	got, err = s.History(ctx, "rss:unknown", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown source entries: %d", len(got))
	}
}

func TestOpen_CreatesFileAndSchema(t *testing.T) {
	// WHAT: Open creates the database file, parent directories and table.
	path := filepath.Join(t.TempDir(), "state", "runlog.db")
	s, err := runlog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Insert(context.Background(), &runlog.Entry{Source: "rss:x", Status: runlog.StatusOK}); err != nil {
		t.Fatalf("Insert after Open: %v", err)
	}
}
