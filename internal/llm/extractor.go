package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-engine/internal/common"
	"github.com/joseph-ayodele/receipt-engine/internal/entity"
	"github.com/joseph-ayodele/receipt-engine/internal/extract"
)

// receiptPayload is the fixed-key JSON contract the service is instructed to
// return. Missing keys default through Canonicalize, never here.
type receiptPayload struct {
	Merchant      string        `json:"merchant"`
	Date          string        `json:"date"`
	InvoiceNumber string        `json:"invoice_number"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	LineItems     []itemPayload `json:"line_items"`
}

type itemPayload struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// Extractor is the structured-extraction path: it delegates the parse to an
// external model behind a Client. Unlike the rule-based path it can fail, and
// a failure means no record at all — the caller treats the upload as
// unprocessed rather than persisting a partial parse.
type Extractor struct {
	client Client
	schema map[string]any
	logger *slog.Logger
}

// NewExtractor builds the delegating extraction path on top of a transport.
func NewExtractor(client Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client: client,
		schema: BuildReceiptJSONSchema(),
		logger: logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, req extract.Request) (entity.CanonicalReceipt, error) {
	rid := uuid.New().String()
	start := time.Now()

	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"file", req.SourceFilename,
		"text_len", len(req.RawText),
	)

	response, err := e.client.Generate(ctx, BuildSystemPrompt(), BuildUserPrompt(req.RawText))
	if err != nil {
		e.logger.Error("llm.extract.generate_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.CanonicalReceipt{}, fmt.Errorf("generate: %w", errors.Join(common.ErrExtraction, err))
	}

	content, err := ExtractJSON(response)
	if err != nil {
		e.logger.Error("llm.extract.no_json",
			"req_id", rid, "error", err, "response_bytes", len(response),
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.CanonicalReceipt{}, fmt.Errorf("extract json: %w", errors.Join(common.ErrExtraction, err))
	}

	cleaned, _, err := NormalizeAndSanitizeJSON([]byte(content), e.logger)
	if err != nil {
		e.logger.Error("llm.extract.sanitize_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.CanonicalReceipt{}, fmt.Errorf("sanitize: %w", errors.Join(common.ErrExtraction, err))
	}

	if err := ValidateJSONAgainstSchema(e.schema, cleaned); err != nil {
		e.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.CanonicalReceipt{}, fmt.Errorf("schema validation: %w", errors.Join(common.ErrExtraction, err))
	}

	var payload receiptPayload
	if err := json.Unmarshal(cleaned, &payload); err != nil {
		e.logger.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return entity.CanonicalReceipt{}, fmt.Errorf("unmarshal payload: %w", errors.Join(common.ErrExtraction, err))
	}

	items := make([]entity.LineItem, 0, len(payload.LineItems))
	for _, it := range payload.LineItems {
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		items = append(items, entity.LineItem{Name: it.Name, Qty: qty, Price: it.Price})
	}

	rec := extract.Canonicalize(extract.Fields{
		Merchant:      payload.Merchant,
		Date:          payload.Date,
		InvoiceNumber: payload.InvoiceNumber,
		Subtotal:      payload.Subtotal,
		Tax:           payload.Tax,
		Total:         payload.Total,
	}, items)

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"merchant", rec.Merchant,
		"date", rec.Date,
		"total", rec.Total,
		"items", len(rec.LineItems),
		"elapsed_ms", time.Since(start).Milliseconds())
	return rec, nil
}
