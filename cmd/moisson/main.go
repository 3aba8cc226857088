// Command moisson harvests research-corpus sources into raw batch tables
// and assembles them into one deduplicated corpus table.
//
// Usage:
//
//	moisson harvest -config harvest.yaml -raw-dir data/raw
//	moisson clean -raw-dir data/raw -out data/corpus.csv
//	moisson run -config harvest.yaml -out data/corpus.csv -extract
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/moisson/enrich"
	"github.com/hazyhaar/moisson/harvest"
	"github.com/hazyhaar/moisson/pipeline"
)

const dateLayout = "2006-01-02"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "harvest":
		err = harvestCmd(ctx, os.Args[2:])
	case "clean":
		err = cleanCmd(ctx, os.Args[2:])
	case "run":
		err = runCmd(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "moisson: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("moisson: fatal", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: moisson <command> [flags]

commands:
  harvest   fetch all configured sources into raw batch tables
  clean     merge, normalize, deduplicate and write the corpus table
  run       harvest then clean in one pass

run "moisson <command> -h" for the command's flags`)
}

func harvestCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("harvest", flag.ExitOnError)
	configPath := fs.String("config", "harvest.yaml", "path to sources YAML config")
	rawDir := fs.String("raw-dir", "data/raw", "directory for raw batch tables")
	since := fs.String("since", "", "window start, YYYY-MM-DD (default one year before until)")
	until := fs.String("until", "", "window end, YYYY-MM-DD (default today)")
	runLog := fs.String("runlog", "", "sqlite run log path (empty disables)")
	logLevel := fs.String("log-level", env("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.Parse(args)

	logger := newLogger(*logLevel)
	window, err := parseWindow(*since, *until)
	if err != nil {
		return err
	}
	_, err = doHarvest(ctx, logger, *configPath, *rawDir, *runLog, window)
	return err
}

func cleanCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	rawDir := fs.String("raw-dir", "data/raw", "directory holding raw batch tables")
	out := fs.String("out", "data/corpus.csv", "output corpus table path")
	threshold := fs.Int("threshold", 0, "same-domain dedup similarity threshold (default 90)")
	extract := fs.Bool("extract", false, "enrich surviving records with extracted fulltext")
	logLevel := fs.String("log-level", env("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.Parse(args)

	logger := newLogger(*logLevel)
	return doClean(ctx, logger, *rawDir, *out, *threshold, *extract)
}

func runCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "harvest.yaml", "path to sources YAML config")
	rawDir := fs.String("raw-dir", "data/raw", "directory for raw batch tables")
	out := fs.String("out", "data/corpus.csv", "output corpus table path")
	since := fs.String("since", "", "window start, YYYY-MM-DD (default one year before until)")
	until := fs.String("until", "", "window end, YYYY-MM-DD (default today)")
	threshold := fs.Int("threshold", 0, "same-domain dedup similarity threshold (default 90)")
	extract := fs.Bool("extract", false, "enrich surviving records with extracted fulltext")
	runLog := fs.String("runlog", "", "sqlite run log path (empty disables)")
	logLevel := fs.String("log-level", env("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	fs.Parse(args)

	logger := newLogger(*logLevel)
	window, err := parseWindow(*since, *until)
	if err != nil {
		return err
	}
	if _, err := doHarvest(ctx, logger, *configPath, *rawDir, *runLog, window); err != nil {
		return err
	}
	return doClean(ctx, logger, *rawDir, *out, *threshold, *extract)
}

func doHarvest(ctx context.Context, logger *slog.Logger, configPath, rawDir, runLogPath string, window harvest.Window) (int, error) {
	cfg, err := harvest.LoadConfig(configPath)
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}

	opts := []harvest.Option{harvest.WithLogger(logger)}
	if runLogPath != "" {
		rl, err := harvest.OpenRunLog(runLogPath)
		if err != nil {
			return 0, fmt.Errorf("open run log: %w", err)
		}
		defer rl.Close()
		opts = append(opts, harvest.WithRunLog(rl))
	}

	svc := harvest.New(cfg, opts...)
	n, err := svc.Run(ctx, window, rawDir)
	if err != nil {
		return n, err
	}
	logger.Info("moisson: harvest complete", "rows", n, "raw_dir", rawDir)
	return n, nil
}

func doClean(ctx context.Context, logger *slog.Logger, rawDir, out string, threshold int, extract bool) error {
	opts := pipeline.CleanOptions{
		RawDir:    rawDir,
		OutPath:   out,
		Threshold: threshold,
		Logger:    logger,
	}
	if extract {
		opts.Extractor = enrich.New(enrich.Config{})
	}

	n, err := pipeline.Clean(ctx, opts)
	if err != nil {
		return err
	}
	logger.Info("moisson: corpus written", "rows", n, "path", out)
	return nil
}

// parseWindow resolves the harvest window. An empty until means today, an
// empty since means one year before until.
func parseWindow(since, until string) (harvest.Window, error) {
	var w harvest.Window
	w.Until = time.Now().UTC().Truncate(24 * time.Hour)
	if until != "" {
		t, err := time.Parse(dateLayout, until)
		if err != nil {
			return w, fmt.Errorf("parse -until: %w", err)
		}
		w.Until = t
	}
	w.Since = w.Until.AddDate(-1, 0, 0)
	if since != "" {
		t, err := time.Parse(dateLayout, since)
		if err != nil {
			return w, fmt.Errorf("parse -since: %w", err)
		}
		w.Since = t
	}
	return w, w.Validate()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
