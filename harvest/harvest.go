// Package harvest pulls source records from configured feeds and APIs into
// per-source raw batch tables.
//
// Each source runs through its own adapter; an adapter failure contributes
// zero rows and is logged, never aborting the other sources. Every adapter
// request is paced by a fixed sleep and recorded in the run log.
package harvest

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hazyhaar/moisson/corpus"
	"github.com/hazyhaar/moisson/harvest/internal/fetch"
	"github.com/hazyhaar/moisson/harvest/internal/runlog"
	"github.com/hazyhaar/moisson/table"
)

// Window is an inclusive [Since, Until] harvest window.
type Window struct {
	Since time.Time
	Until time.Time
}

// Validate rejects an inverted window.
func (w Window) Validate() error {
	if w.Since.After(w.Until) {
		return ErrWindowInverted
	}
	return nil
}

// Contains reports whether t falls inside the window. Records whose date
// could not be resolved are passed through unfiltered by the adapters, so
// callers only invoke this with resolved dates.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && !t.After(w.Until)
}

// Service runs the configured source adapters.
type Service struct {
	config  *Config
	fetcher *fetch.Fetcher
	logger  *slog.Logger
	log     *runlog.Store
	sleep   func(context.Context, time.Duration)

	// API endpoints, overridable in tests.
	openalexBase string
	gdeltBase    string
}

// Option customises the Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f *fetch.Fetcher) Option { return func(s *Service) { s.fetcher = f } }

// WithRunLog records every adapter request in the given store.
func WithRunLog(rl *runlog.Store) Option { return func(s *Service) { s.log = rl } }

// OpenRunLog opens the sqlite run log at path, creating the file and schema
// as needed. The caller owns Close. Callers outside this package obtain the
// store here and hand it straight to WithRunLog.
func OpenRunLog(path string) (*runlog.Store, error) {
	return runlog.Open(path)
}

// WithSleepFunc replaces the pacing sleep, for tests.
func WithSleepFunc(fn func(context.Context, time.Duration)) Option {
	return func(s *Service) { s.sleep = fn }
}

// New creates a Service from a validated config.
func New(cfg *Config, opts ...Option) *Service {
	s := &Service{
		config:  cfg,
		fetcher: fetch.New(fetch.Config{}),
		logger:  slog.Default(),
		sleep:   sleepCtx,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run harvests every configured source into rawDir, one batch file per
// source, and returns the total number of raw rows written.
func (s *Service) Run(ctx context.Context, window Window, rawDir string) (int, error) {
	if err := window.Validate(); err != nil {
		return 0, err
	}

	total := 0
	for _, a := range s.adapters() {
		rows := s.runAdapter(ctx, a, window)
		if len(rows) == 0 {
			continue
		}
		path := filepath.Join(rawDir, batchName(a.label))
		if err := table.WriteBatch(path, rows); err != nil {
			s.logger.Error("harvest: write batch failed", "source", a.label, "error", err)
			continue
		}
		s.logger.Info("harvest: batch written", "source", a.label, "rows", len(rows), "path", path)
		total += len(rows)
	}
	return total, nil
}

type adapter struct {
	label string
	run   func(ctx context.Context, window Window) ([]corpus.RawRecord, error)
}

func (s *Service) adapters() []adapter {
	var out []adapter
	if len(s.config.Sources.RSS) > 0 {
		urls := s.config.Sources.RSS
		out = append(out, adapter{label: "rss", run: func(ctx context.Context, w Window) ([]corpus.RawRecord, error) {
			return s.harvestRSS(ctx, urls, w)
		}})
	}
	if len(s.config.Sources.NGORSS) > 0 {
		urls := s.config.Sources.NGORSS
		out = append(out, adapter{label: "ngo_rss", run: func(ctx context.Context, w Window) ([]corpus.RawRecord, error) {
			return s.harvestRSS(ctx, urls, w)
		}})
	}
	if s.config.Sources.OpenAlex.Query != "" {
		out = append(out, adapter{label: "openalex", run: s.harvestOpenAlex})
	}
	if s.config.Sources.GDELT.GKGSearch != "" {
		out = append(out, adapter{label: "gdelt", run: s.harvestGDELT})
	}
	return out
}

// runAdapter isolates one adapter: a failure is logged and yields whatever
// rows were collected before it (usually none).
func (s *Service) runAdapter(ctx context.Context, a adapter, window Window) []corpus.RawRecord {
	start := time.Now()
	rows, err := a.run(ctx, window)
	if err != nil {
		s.logger.Warn("harvest: source failed", "source", a.label, "error", err, "rows", len(rows))
	}
	s.record(ctx, a.label, len(rows), time.Since(start), err)
	return rows
}

func (s *Service) record(ctx context.Context, source string, rows int, d time.Duration, err error) {
	if s.log == nil {
		return
	}
	e := &runlog.Entry{
		Source:     source,
		Status:     runlog.StatusOK,
		Rows:       rows,
		DurationMs: d.Milliseconds(),
	}
	if err != nil {
		e.Status = runlog.StatusError
		e.Reason = fetch.Reason(err)
		e.ErrorMessage = err.Error()
		var fe *fetch.Error
		if errors.As(err, &fe) {
			e.StatusCode = fe.StatusCode
		}
	}
	if lerr := s.log.Insert(ctx, e); lerr != nil {
		s.logger.Warn("harvest: run log insert failed", "source", source, "error", lerr)
	}
}

func (s *Service) pace(ctx context.Context) {
	if d := s.config.Sleep(); d > 0 {
		s.sleep(ctx, d)
	}
}

// now is swapped out in tests for deterministic batch names.
var now = time.Now

func batchName(label string) string {
	return label + "_" + strconv.FormatInt(now().Unix(), 10) + ".csv"
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
