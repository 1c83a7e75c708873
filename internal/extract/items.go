package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/receipt-engine/internal/entity"
)

// LineItemExtractor recovers purchased items line by line. Each line is
// judged independently; there is no cross-line state.
type LineItemExtractor struct {
	pricePattern *regexp.Regexp
	qtyPattern   *regexp.Regexp
	excludeWords []string
}

// NewLineItemExtractor compiles the item patterns.
func NewLineItemExtractor() *LineItemExtractor {
	return &LineItemExtractor{
		pricePattern: regexp.MustCompile(`[\s$]([\d,]+\.\d{2})\s*$`),
		qtyPattern:   regexp.MustCompile(`^(\d+)\s*[xX]\s*`),
		excludeWords: []string{
			"total", "amount", "due", "visa", "mastercard", "cash", "change", "tax",
		},
	}
}

// Extract returns the items found in the normalized lines, in source order.
// A line qualifies only when it ends in a two-decimal price; summary and
// payment lines are suppressed by the exclusion words.
func (x *LineItemExtractor) Extract(lines []string) []entity.LineItem {
	var items []entity.LineItem
	for _, line := range lines {
		loc := x.pricePattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		price, ok := parseAmount(line[loc[2]:loc[3]])
		if !ok {
			continue
		}
		name := strings.TrimSpace(line[:loc[0]])
		if x.excluded(name) {
			continue
		}
		qty := 1
		if m := x.qtyPattern.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				qty = n
				name = strings.TrimSpace(name[len(m[0]):])
			}
		}
		if name == "" {
			continue
		}
		items = append(items, entity.LineItem{Name: name, Qty: qty, Price: price})
	}
	return items
}

func (x *LineItemExtractor) excluded(name string) bool {
	lower := strings.ToLower(name)
	for _, word := range x.excludeWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
