package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/receipt-engine/constants"
	"github.com/joseph-ayodele/receipt-engine/internal/common"
	"github.com/joseph-ayodele/receipt-engine/internal/export"
	"github.com/joseph-ayodele/receipt-engine/internal/extract"
	"github.com/joseph-ayodele/receipt-engine/internal/llm"
	"github.com/joseph-ayodele/receipt-engine/internal/llm/gemini"
	"github.com/joseph-ayodele/receipt-engine/internal/llm/openai"
	"github.com/joseph-ayodele/receipt-engine/internal/ocr"
	"github.com/joseph-ayodele/receipt-engine/internal/pipeline"
	"github.com/joseph-ayodele/receipt-engine/internal/receipts"
	"github.com/joseph-ayodele/receipt-engine/internal/repository"
	"github.com/joseph-ayodele/receipt-engine/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Error("db open failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	extractors, cleanup, err := buildExtractors(ctx, cfg, logger)
	if err != nil {
		logger.Error("extractor setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	textOCR := ocr.NewExtractor(ocr.Config{
		Tesseract:   cfg.OCR.TesseractPath,
		Language:    cfg.OCR.Languages,
		TessdataDir: cfg.OCR.TessdataDir,
	}, logger)

	repo := repository.NewReceiptRepository(db, cfg.Database.Driver, logger)
	processor := pipeline.NewProcessor(pipeline.Config{
		Backend: cfg.Backend(),
		Checks:  cfg.Rules(),
	}, extractors, repo, textOCR, logger)
	svc := receipts.NewService(processor, repo, export.NewService(repo, logger), logger)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.NewServer(svc, db, logger).Router(),
	}

	go func() {
		logger.Info("http.listen", "addr", cfg.Server.Addr, "backend", cfg.Pipeline.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}

// buildExtractors wires every backend the configuration allows; the rules
// path is always available as a fallback.
func buildExtractors(ctx context.Context, cfg *common.Config, logger *slog.Logger) (map[constants.Backend]extract.Extractor, func(), error) {
	extractors := map[constants.Backend]extract.Extractor{
		constants.BackendRules: extract.NewRulesExtractor(logger),
	}
	cleanup := func() {}

	if cfg.LLM.APIKey != "" {
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		extractors[constants.BackendOpenAI] = llm.NewExtractor(client, logger)
	}

	if cfg.LLM.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel, logger)
		if err != nil {
			return nil, cleanup, err
		}
		extractors[constants.BackendGemini] = llm.NewExtractor(client, logger)
		cleanup = func() { _ = client.Close() }
	}

	return extractors, cleanup, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
