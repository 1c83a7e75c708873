package extract

import (
	"time"

	"github.com/joseph-ayodele/receipt-engine/internal/entity"
)

// Canonicalize merges extractor output into the immutable CanonicalReceipt.
// All default substitution happens here, in one place: merchant and invoice
// number fall back to the Unknown sentinel, the date falls back to today.
//
// The subtotal backfill also lives here so validation never learns which
// extraction path produced the record: when subtotal was not recovered but
// total and tax both were, subtotal becomes total − tax. A non-positive
// derivation leaves subtotal at zero.
func Canonicalize(f Fields, items []entity.LineItem) entity.CanonicalReceipt {
	merchant := f.Merchant
	if merchant == "" {
		merchant = entity.Unknown
	}
	date := f.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	invoice := f.InvoiceNumber
	if invoice == "" {
		invoice = entity.Unknown
	}
	subtotal := f.Subtotal
	if subtotal == 0 && f.Total != 0 && f.Tax != 0 {
		if derived := round2(f.Total - f.Tax); derived > 0 {
			subtotal = derived
		}
	}
	return entity.CanonicalReceipt{
		Merchant:      merchant,
		Date:          date,
		InvoiceNumber: invoice,
		Subtotal:      subtotal,
		Tax:           f.Tax,
		Total:         f.Total,
		LineItems:     items,
	}
}
