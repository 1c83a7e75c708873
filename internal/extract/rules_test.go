package extract

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-engine/internal/entity"
)

func TestRulesExtractorEndToEnd(t *testing.T) {
	e := NewRulesExtractor(nil)

	raw := "Acme Mart\n01/15/2024\n2 x Coffee   8.00\nTax: 0.64\nTotal: 8.64"
	rec, err := e.Extract(context.Background(), Request{RawText: raw, SourceFilename: "acme.txt"})

	require.NoError(t, err)
	assert.Equal(t, "Acme Mart", rec.Merchant)
	assert.Equal(t, "01/15/2024", rec.Date)
	assert.Equal(t, entity.Unknown, rec.InvoiceNumber)
	assert.Equal(t, 0.64, rec.Tax)
	assert.Equal(t, 8.64, rec.Total)
	// Subtotal is never extracted directly on this path; canonicalization
	// derives it from total − tax.
	assert.Equal(t, 8.00, rec.Subtotal)
	require.Len(t, rec.LineItems, 1)
	assert.Equal(t, entity.LineItem{Name: "Coffee", Qty: 2, Price: 8.00}, rec.LineItems[0])
}

func TestRulesExtractorEmptyText(t *testing.T) {
	e := NewRulesExtractor(nil)

	rec, err := e.Extract(context.Background(), Request{RawText: "   \n \n"})

	require.NoError(t, err)
	assert.Equal(t, entity.Unknown, rec.Merchant)
	assert.Regexp(t, isoDate, rec.Date)
	assert.Equal(t, 0.0, rec.Total)
	assert.Equal(t, 0.0, rec.Tax)
	assert.Empty(t, rec.LineItems)
}

func TestRulesExtractorIdempotent(t *testing.T) {
	e := NewRulesExtractor(nil)
	gofakeit.Seed(11)

	raw := fmt.Sprintf("%s\n01/02/2024\n%s  4.20\n2 x %s  9.00\nTax: 1.05\nTotal: 14.25",
		gofakeit.Company(), gofakeit.NounConcrete(), gofakeit.NounConcrete())

	first, err := e.Extract(context.Background(), Request{RawText: raw})
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), Request{RawText: raw})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
