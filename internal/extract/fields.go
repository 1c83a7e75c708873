package extract

import "regexp"

// FieldExtractor recovers merchant, date, total and tax from receipt text
// with line-oriented heuristics. All patterns are compiled once; the zero
// value is not usable, construct with NewFieldExtractor.
type FieldExtractor struct {
	datePattern  *regexp.Regexp
	totalPattern *regexp.Regexp
	taxPattern   *regexp.Regexp
}

// NewFieldExtractor compiles the field patterns.
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{
		datePattern:  regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}[/-]\d{1,2}[/-]\d{1,2}`),
		totalPattern: regexp.MustCompile(`(?i)(?:Total|Amount|Due|Balance|Grand Total)[\s:$]*([\d,]+\.\d{2})`),
		taxPattern:   regexp.MustCompile(`(?i)(?:Tax|VAT|GST|Sales\s*Tax)[\s:$]*([\d,]+\.\d{2})`),
	}
}

// ExtractFields runs every field heuristic over one receipt.
//
// raw is the original text so date/amount searches can span line boundaries;
// lines is the normalized sequence the merchant heuristic reads. Fields that
// did not match stay zero for Canonicalize to default.
func (x *FieldExtractor) ExtractFields(raw string, lines []string) Fields {
	f := Fields{}
	if len(lines) > 0 {
		f.Merchant = lines[0]
	}
	f.Date = x.extractDate(raw)
	f.Total = x.extractTotal(raw)
	f.Tax = x.extractTax(raw)
	return f
}

// extractDate returns the first date-shaped substring verbatim. No calendar
// validation: "13/45/2024" is accepted, matching the leniency of the rest of
// the parse.
func (x *FieldExtractor) extractDate(raw string) string {
	return x.datePattern.FindString(raw)
}

// extractTotal collects every keyword-tagged amount and returns the last one
// in text order. Receipts list running subtotals before the final total, so
// the last occurrence is the best guess for the grand total.
func (x *FieldExtractor) extractTotal(raw string) float64 {
	var last float64
	for _, m := range x.totalPattern.FindAllStringSubmatch(raw, -1) {
		if v, ok := parseAmount(m[1]); ok {
			last = v
		}
	}
	return last
}

// extractTax collects every tax-keyword amount and returns the maximum.
// Per-rate breakdown lines are smaller than the summary tax line, so the
// maximum is the best guess for the real tax.
func (x *FieldExtractor) extractTax(raw string) float64 {
	var max float64
	for _, m := range x.taxPattern.FindAllStringSubmatch(raw, -1) {
		if v, ok := parseAmount(m[1]); ok && v > max {
			max = v
		}
	}
	return max
}
