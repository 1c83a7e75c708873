package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/joseph-ayodele/receipt-engine/constants"
	"github.com/joseph-ayodele/receipt-engine/internal/common"
	"github.com/joseph-ayodele/receipt-engine/internal/export"
	"github.com/joseph-ayodele/receipt-engine/internal/extract"
	"github.com/joseph-ayodele/receipt-engine/internal/ingest"
	"github.com/joseph-ayodele/receipt-engine/internal/llm"
	"github.com/joseph-ayodele/receipt-engine/internal/llm/gemini"
	"github.com/joseph-ayodele/receipt-engine/internal/llm/openai"
	"github.com/joseph-ayodele/receipt-engine/internal/ocr"
	"github.com/joseph-ayodele/receipt-engine/internal/pipeline"
	"github.com/joseph-ayodele/receipt-engine/internal/repository"
)

func main() {
	fs := ff.NewFlagSet("receipt-engine")
	var (
		dir       = fs.StringLong("dir", "", "Directory of receipt files to process (required)")
		exts      = fs.StringLong("ext", "", "Comma-separated extensions to include (default: jpg,jpeg,png,txt)")
		backend   = fs.StringLong("backend", "rules", "Extraction backend: rules, openai or gemini")
		checks    = fs.StringLong("checks", "", "Comma-separated validation checks (default: all)")
		driver    = fs.StringLong("db-driver", "sqlite", "Receipt store driver: sqlite or pgx")
		dsn       = fs.StringLong("db-dsn", "file:receipts.db", "Receipt store DSN")
		out       = fs.StringLong("out", "", "Write an XLSX export of the store to this path after processing")
		llmKey    = fs.StringLong("llm-key", "", "API key for the openai backend")
		geminiKey = fs.StringLong("gemini-key", "", "API key for the gemini backend")
		verbose   = fs.BoolLong("verbose", "Debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("RECEIPT_ENGINE")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *dir == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --dir is required")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, runOptions{
		dir:       *dir,
		exts:      splitCSV(*exts),
		backend:   *backend,
		checks:    splitCSV(*checks),
		driver:    *driver,
		dsn:       *dsn,
		out:       *out,
		llmKey:    *llmKey,
		geminiKey: *geminiKey,
	}); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	dir       string
	exts      []string
	backend   string
	checks    []string
	driver    string
	dsn       string
	out       string
	llmKey    string
	geminiKey string
}

func run(ctx context.Context, logger *slog.Logger, opts runOptions) error {
	backend, ok := constants.ParseBackend(opts.backend)
	if !ok {
		return fmt.Errorf("unknown backend %q", opts.backend)
	}
	rules := make([]constants.Rule, 0, len(opts.checks))
	for _, name := range opts.checks {
		r, ok := constants.ParseRule(name)
		if !ok {
			return fmt.Errorf("unknown validation check %q", name)
		}
		rules = append(rules, r)
	}

	db, err := repository.Open(ctx, repository.Config{Driver: opts.driver, DSN: opts.dsn}, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	extractors := map[constants.Backend]extract.Extractor{
		constants.BackendRules: extract.NewRulesExtractor(logger),
	}
	if opts.llmKey != "" {
		extractors[constants.BackendOpenAI] = llm.NewExtractor(
			openai.NewClient(openai.Config{APIKey: opts.llmKey}, logger), logger)
	}
	if opts.geminiKey != "" {
		client, err := gemini.NewClient(ctx, opts.geminiKey, "", logger)
		if err != nil {
			return fmt.Errorf("gemini client: %w", err)
		}
		defer func() { _ = client.Close() }()
		extractors[constants.BackendGemini] = llm.NewExtractor(client, logger)
	}
	if _, ok := extractors[backend]; !ok {
		return fmt.Errorf("backend %q selected but not configured: %w", backend, common.ErrBackendNotConfig)
	}

	repo := repository.NewReceiptRepository(db, opts.driver, logger)
	processor := pipeline.NewProcessor(
		pipeline.Config{Backend: backend, Checks: rules},
		extractors, repo,
		ocr.NewExtractor(ocr.Config{}, logger),
		logger)

	files, stats, err := ingest.ScanDirectory(opts.dir, opts.exts)
	if err != nil {
		return fmt.Errorf("scan %s: %w", opts.dir, err)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned, "matched", stats.Matched,
		"deduplicated", stats.Deduplicated, "failed", stats.Failed)

	var processed, needsReview, failed int
	for _, f := range files {
		res, err := processor.Process(ctx, pipeline.Upload{
			Path:           f.Path,
			SourceFilename: filepath.Base(f.Path),
		})
		if err != nil {
			failed++
			logger.Error("process failed", "file", f.Path, "error", err)
			continue
		}
		processed++
		if res.NeedsReview {
			needsReview++
		}

		line := fmt.Sprintf("%-30s %-24s %8.2f", filepath.Base(f.Path), res.Receipt.Merchant, res.Receipt.Total)
		if fails := res.Verdict.Failed(); len(fails) > 0 {
			names := make([]string, len(fails))
			for i, r := range fails {
				names[i] = string(r)
			}
			line += "  FAILED: " + strings.Join(names, ",")
		}
		fmt.Println(line)
	}
	fmt.Printf("\nprocessed %d, needs review %d, failed %d\n", processed, needsReview, failed)

	if opts.out != "" {
		data, err := export.NewService(repo, logger).ExportXLSX(ctx)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(opts.out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.out, err)
		}
		logger.Info("export written", "path", opts.out)
	}
	return nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
