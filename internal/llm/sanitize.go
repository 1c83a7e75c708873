package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

// amountKeys are the money-ish top-level fields that get numeric coercion.
var amountKeys = []string{"subtotal", "tax", "total"}

// NormalizeAndSanitizeJSON repairs the common ways a model strays from the
// schema before validation:
//   - renames known synonyms (merchant_name -> merchant, items -> line_items)
//   - coerces string amounts ("12.34", "$12.34") to numbers
//   - drops null/empty optionals and unknown keys
//   - coerces item qty to a positive integer and price to a number
//
// It returns the cleaned JSON and the list of keys that were dropped or
// rewritten, for logging only.
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}
	renamed("merchant_name", "merchant")
	renamed("store", "merchant")
	renamed("invoice", "invoice_number")
	renamed("invoice_no", "invoice_number")
	renamed("items", "line_items")

	for _, k := range amountKeys {
		if v, ok := m[k]; ok {
			if f, ok := coerceNumber(v); ok {
				m[k] = f
			} else {
				delete(m, k)
				dropped = append(dropped, k+"(unparseable)")
			}
		}
	}

	for _, k := range []string{"merchant", "date", "invoice_number"} {
		if v, ok := m[k]; ok {
			s, isStr := v.(string)
			if !isStr || strings.TrimSpace(s) == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
				continue
			}
			m[k] = strings.TrimSpace(s)
		}
	}

	if v, ok := m["line_items"]; ok {
		items, d := sanitizeItems(v)
		dropped = append(dropped, d...)
		if items == nil {
			delete(m, "line_items")
		} else {
			m["line_items"] = items
		}
	}

	allowed := map[string]struct{}{
		"merchant": {}, "date": {}, "invoice_number": {},
		"subtotal": {}, "tax": {}, "total": {}, "line_items": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitized", "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeItems(v any) ([]any, []string) {
	list, ok := v.([]any)
	if !ok {
		return nil, []string{"line_items(not array)"}
	}
	var dropped []string
	out := make([]any, 0, len(list))
	for i, el := range list {
		obj, ok := el.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("line_items[%d](not object)", i))
			continue
		}
		name, _ := obj["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			dropped = append(dropped, fmt.Sprintf("line_items[%d](no name)", i))
			continue
		}
		item := map[string]any{"name": name}
		qty := 1
		if q, ok := obj["qty"]; ok {
			if f, ok := coerceNumber(q); ok && int(f) > 0 {
				qty = int(f)
			}
		}
		item["qty"] = qty
		if p, ok := obj["price"]; ok {
			if f, ok := coerceNumber(p); ok && f >= 0 {
				item["price"] = f
			}
		}
		out = append(out, item)
	}
	return out, dropped
}

// coerceNumber accepts a JSON number or a string like "12.34", "$12.34" or
// "1,234.56" and returns a non-negative float.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return t, true
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
