package llm

import "strings"

// ocrTextLimit caps how much OCR text is embedded in one request. Receipts
// rarely exceed it; anything longer is usually OCR noise.
const ocrTextLimit = 3000

// BuildSystemPrompt composes the system message: the fixed JSON-key contract
// plus the extraction policy for derived and missing amounts.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a receipts parser. Return ONLY a JSON object, no prose and no markdown fences.",
		"The object must have exactly these keys: merchant, date, invoice_number, subtotal, tax, total, line_items.",
		"line_items is an array of objects with keys: name, qty, price.",
		"All amounts are plain numbers, not strings, with up to two decimals.",
		"If subtotal is not printed but total and tax are, derive subtotal = total - tax.",
		"If tax is not printed, infer it from the receipt or use 0.",
		"If the merchant or invoice number cannot be read, use \"Unknown\".",
		"Use the date exactly as printed on the receipt.",
		"Never output null. If a field is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the raw OCR text, truncated past ocrTextLimit.
func BuildUserPrompt(rawText string) string {
	var b strings.Builder
	b.WriteString("OCR text of the receipt:\n")
	text := strings.TrimSpace(rawText)
	if len(text) > ocrTextLimit {
		b.WriteString(text[:ocrTextLimit])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
