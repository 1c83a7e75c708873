package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONStripsFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"total": 1.00}`, `{"total": 1.00}`},
		{"json fence", "```json\n{\"total\": 1.00}\n```", `{"total": 1.00}`},
		{"plain fence", "```\n{\"total\": 1.00}\n```", `{"total": 1.00}`},
		{"leading prose", "Here is the receipt:\n{\"total\": 1.00}", `{"total": 1.00}`},
		{"trailing prose", "{\"total\": 1.00}\nLet me know!", `{"total": 1.00}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	_, err := ExtractJSON("I could not read this receipt, sorry.")
	assert.Error(t, err)
}

func TestSanitizeCoercesStringAmounts(t *testing.T) {
	raw := []byte(`{"merchant": " Acme ", "total": "$1,234.56", "tax": "3.20", "subtotal": 10}`)

	cleaned, _, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(cleaned, &m))
	assert.Equal(t, "Acme", m["merchant"])
	assert.Equal(t, 1234.56, m["total"])
	assert.Equal(t, 3.20, m["tax"])
	assert.Equal(t, 10.0, m["subtotal"])
}

func TestSanitizeRenamesAndDropsUnknown(t *testing.T) {
	raw := []byte(`{"merchant_name": "Acme", "items": [{"name": "Coffee", "qty": "2", "price": "4.00"}], "currency": "USD"}`)

	cleaned, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, dropped)

	var m map[string]any
	require.NoError(t, json.Unmarshal(cleaned, &m))
	assert.Equal(t, "Acme", m["merchant"])
	assert.NotContains(t, m, "currency")

	items, ok := m["line_items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Coffee", item["name"])
	assert.Equal(t, 2.0, item["qty"])
	assert.Equal(t, 4.00, item["price"])
}

func TestSanitizeDropsUnparseableAmount(t *testing.T) {
	raw := []byte(`{"total": "twelve dollars", "tax": null}`)

	cleaned, _, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(cleaned, &m))
	assert.NotContains(t, m, "total")
	assert.NotContains(t, m, "tax")
}

func TestSanitizedOutputValidates(t *testing.T) {
	raw := []byte(`{"merchant": "Acme", "date": "01/15/2024", "total": "8.64", "tax": 0.64,
		"line_items": [{"name": "Coffee", "qty": 2, "price": 8.00}], "notes": "thanks"}`)

	cleaned, _, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)
	assert.NoError(t, ValidateJSONAgainstSchema(BuildReceiptJSONSchema(), cleaned))
}
