package llm

// BuildReceiptJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. The sanitize pass coerces the model's output to these types
// first; validation then catches anything coercion could not repair.
//
// Nothing is required: a missing key is defaulted during coercion, matching
// the leniency of the rule-based path.
func BuildReceiptJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":  map[string]any{"type": "string", "minLength": 1},
			"qty":   map[string]any{"type": "integer", "minimum": 1},
			"price": map[string]any{"type": "number", "minimum": 0},
		},
		"required": []string{"name"},
	}

	props := map[string]any{
		"merchant":       map[string]any{"type": "string"},
		"date":           map[string]any{"type": "string"},
		"invoice_number": map[string]any{"type": "string"},
		"subtotal":       amountProp(),
		"tax":            amountProp(),
		"total":          amountProp(),
		"line_items":     map[string]any{"type": "array", "items": item},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func amountProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}
