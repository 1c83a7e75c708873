package extract

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a captured amount such as "1,234.56" into a float after
// dropping thousands separators. A failed parse excludes the candidate from
// its match set instead of erroring; the caller falls back to the remaining
// candidates or the documented default.
func parseAmount(s string) (float64, bool) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// round2 rounds to two decimal places for derived currency values.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
