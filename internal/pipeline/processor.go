package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/receipt-engine/constants"
	"github.com/joseph-ayodele/receipt-engine/internal/common"
	"github.com/joseph-ayodele/receipt-engine/internal/entity"
	"github.com/joseph-ayodele/receipt-engine/internal/extract"
	"github.com/joseph-ayodele/receipt-engine/internal/normalize"
	"github.com/joseph-ayodele/receipt-engine/internal/ocr"
	"github.com/joseph-ayodele/receipt-engine/internal/repository"
	"github.com/joseph-ayodele/receipt-engine/internal/validate"
)

// TextOCR is the image-to-text seam; satisfied by *ocr.Extractor.
type TextOCR interface {
	ExtractText(ctx context.Context, path string) (ocr.Result, error)
}

// Upload is one receipt to process: either a file on disk (image routed
// through OCR, .txt read directly) or pre-extracted raw text.
type Upload struct {
	Path           string
	RawText        string
	SourceFilename string
}

// Config selects the extraction backend and the enabled validation checks.
type Config struct {
	Backend       constants.Backend
	Checks        []constants.Rule
	MinConfidence float32
}

// Processor runs one upload start to finish: OCR, extract, canonicalize,
// duplicate lookup, validation, persist, reconciliation. Uploads are
// processed synchronously one at a time; every run is a pure function of its
// input plus the store round trips, with all state carried in the returned
// PipelineResult.
type Processor struct {
	cfg        Config
	extractors map[constants.Backend]extract.Extractor
	repo       repository.ReceiptRepository
	ocr        TextOCR
	eval       *validate.Evaluator
	logger     *slog.Logger
}

func NewProcessor(
	cfg Config,
	extractors map[constants.Backend]extract.Extractor,
	repo repository.ReceiptRepository,
	textOCR TextOCR,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = ocr.ImageConfidenceThreshold
	}
	return &Processor{
		cfg:        cfg,
		extractors: extractors,
		repo:       repo,
		ocr:        textOCR,
		eval:       validate.NewEvaluator(cfg.Checks),
		logger:     logger,
	}
}

// Process runs the full pipeline for one upload. An upstream failure (OCR,
// extraction backend, store) aborts the run with an error and persists
// nothing; validation failures are not errors and land in the verdict.
func (p *Processor) Process(ctx context.Context, up Upload) (*entity.PipelineResult, error) {
	start := time.Now()

	source := up.SourceFilename
	if source == "" && up.Path != "" {
		source = filepath.Base(up.Path)
	}

	rawText, confidence, err := p.resolveText(ctx, up)
	if err != nil {
		p.logger.Error("pipeline.text.failed", "file", source, "error", err)
		return nil, err
	}

	extractor, ok := p.extractors[p.cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("backend %q: %w", p.cfg.Backend, common.ErrBackendNotConfig)
	}

	rec, err := extractor.Extract(ctx, extract.Request{RawText: rawText, SourceFilename: source})
	if err != nil {
		p.logger.Error("pipeline.extract.failed", "file", source, "backend", p.cfg.Backend, "error", err)
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.logger.Info("pipeline.extract.ok",
		"file", source,
		"backend", p.cfg.Backend,
		"merchant", rec.Merchant,
		"total", rec.Total,
		"items", len(rec.LineItems))

	// Duplicate lookup runs before the insert so the record never matches
	// itself.
	dupFound, dupCount, err := p.repo.Exists(ctx, repository.ExistsQuery{
		Merchant:      rec.Merchant,
		Date:          rec.Date,
		Total:         rec.Total,
		InvoiceNumber: rec.InvoiceNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup: %w", errors.Join(common.ErrDatabase, err))
	}

	verdict := p.eval.PrePersist(rec, dupFound, dupCount)

	id, err := p.repo.Insert(ctx, rec, source)
	if err != nil {
		return nil, fmt.Errorf("persist receipt: %w", errors.Join(common.ErrDatabase, err))
	}
	if err := p.repo.InsertLineItems(ctx, id, rec.LineItems); err != nil {
		return nil, fmt.Errorf("persist line items: %w", errors.Join(common.ErrDatabase, err))
	}

	var discrepancy float64
	if p.eval.Enabled(constants.RuleReconciliation) {
		// Line items and totals are fetched back from the store rather than
		// reused from extraction, so the check covers what was actually
		// persisted.
		items, err := p.repo.FetchLineItems(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch line items: %w", errors.Join(common.ErrDatabase, err))
		}
		total, tax, err := p.repo.FetchMetadata(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch metadata: %w", errors.Join(common.ErrDatabase, err))
		}
		res, disc := validate.Reconciliation(items, tax, total)
		verdict[constants.RuleReconciliation] = res
		discrepancy = disc
	}

	needsReview := !verdict.AllPassed()
	var confPtr *float32
	if confidence > 0 {
		c := confidence
		confPtr = &c
		if confidence < p.cfg.MinConfidence {
			needsReview = true
		}
	}

	result := &entity.PipelineResult{
		ReceiptID:      id,
		Receipt:        rec,
		Verdict:        verdict,
		Discrepancy:    discrepancy,
		SourceFilename: source,
		Backend:        p.cfg.Backend,
		OCRConfidence:  confPtr,
		NeedsReview:    needsReview,
		ProcessedAt:    time.Now().UTC(),
		ElapsedMS:      time.Since(start).Milliseconds(),
	}

	p.logger.Info("pipeline.process.ok",
		"file", source,
		"receipt_id", id,
		"needs_review", needsReview,
		"failed_rules", verdict.Failed(),
		"elapsed_ms", result.ElapsedMS)
	return result, nil
}

// resolveText produces the raw OCR text for an upload. The returned
// confidence is non-zero only when the OCR adapter ran.
func (p *Processor) resolveText(ctx context.Context, up Upload) (string, float32, error) {
	if up.RawText != "" {
		return normalize.Cleanup(up.RawText), 0, nil
	}
	if up.Path == "" {
		// Empty text is still valid input; extraction falls back to
		// sentinels across the board.
		return "", 0, nil
	}

	ext := constants.NormalizeExt(filepath.Ext(up.Path))
	switch {
	case constants.IsImageExt(ext):
		if p.ocr == nil {
			return "", 0, fmt.Errorf("no OCR adapter for %q: %w", up.Path, common.ErrUnsupportedFile)
		}
		res, err := p.ocr.ExtractText(ctx, up.Path)
		if err != nil {
			return "", 0, fmt.Errorf("ocr: %w", err)
		}
		return res.Text, res.Confidence, nil
	case ext == "txt":
		b, err := os.ReadFile(up.Path)
		if err != nil {
			return "", 0, fmt.Errorf("read text file: %w", err)
		}
		return normalize.Cleanup(string(b)), 0, nil
	default:
		return "", 0, fmt.Errorf("extension %q: %w", ext, common.ErrUnsupportedFile)
	}
}
