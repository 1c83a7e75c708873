package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/receipt-engine/internal/entity"
	"github.com/joseph-ayodele/receipt-engine/internal/normalize"
)

// rulesExtractor is the regex-heuristic extraction path. It makes no
// external calls and never fails: unrecoverable fields resolve to sentinels.
type rulesExtractor struct {
	fields *FieldExtractor
	items  *LineItemExtractor
	logger *slog.Logger
}

// NewRulesExtractor builds the rule-based extraction path.
func NewRulesExtractor(logger *slog.Logger) Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &rulesExtractor{
		fields: NewFieldExtractor(),
		items:  NewLineItemExtractor(),
		logger: logger,
	}
}

func (e *rulesExtractor) Extract(ctx context.Context, req Request) (entity.CanonicalReceipt, error) {
	start := time.Now()
	lines := normalize.Lines(req.RawText)
	fields := e.fields.ExtractFields(req.RawText, lines)
	items := e.items.Extract(lines)
	rec := Canonicalize(fields, items)
	e.logger.Info("extract.rules.ok",
		"file", req.SourceFilename,
		"lines", len(lines),
		"items", len(items),
		"total", rec.Total,
		"elapsed_ms", time.Since(start).Milliseconds())
	return rec, nil
}
