package extract

import (
	"context"

	"github.com/joseph-ayodele/receipt-engine/internal/entity"
)

// Request carries one upload's raw text into an extractor.
type Request struct {
	RawText        string
	SourceFilename string
}

// Fields holds per-field extraction output before canonicalization. Zero
// values mean "not recovered"; Canonicalize substitutes the documented
// defaults.
type Fields struct {
	Merchant      string
	Date          string
	InvoiceNumber string
	Subtotal      float64
	Tax           float64
	Total         float64
}

// Extractor turns raw receipt text into a canonical receipt. Extraction is
// best-effort: the rule-based implementation always returns a record, falling
// back to sentinels field by field. A delegating implementation returns an
// error when the external service fails, and no partial record with it.
type Extractor interface {
	Extract(ctx context.Context, req Request) (entity.CanonicalReceipt, error)
}
