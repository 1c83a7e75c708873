package entity

import (
	"time"

	"github.com/google/uuid"
)

// Unknown is the sentinel stored when merchant or invoice number could not be
// recovered from the receipt text.
const Unknown = "Unknown"

// LineItem represents one purchased item recovered from a receipt line.
type LineItem struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
}

// CanonicalReceipt is the unified structured representation of a receipt,
// regardless of which extraction path produced it. It is never mutated after
// construction; corrections require re-processing the upload.
type CanonicalReceipt struct {
	Merchant      string     `json:"merchant"`
	Date          string     `json:"date"`
	InvoiceNumber string     `json:"invoice_number"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	LineItems     []LineItem `json:"line_items"`
}

// StoredReceipt represents a persisted receipt row for data transfer between
// layers.
type StoredReceipt struct {
	ID             uuid.UUID `json:"id"`
	Merchant       string    `json:"merchant"`
	Date           string    `json:"date"`
	InvoiceNumber  string    `json:"invoice_number"`
	Subtotal       float64   `json:"subtotal"`
	Tax            float64   `json:"tax"`
	Total          float64   `json:"total"`
	SourceFilename string    `json:"source_filename"`
	UploadedAt     time.Time `json:"uploaded_at"`
}
