package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/joseph-ayodele/receipt-engine/constants"
	"github.com/joseph-ayodele/receipt-engine/internal/entity"
)

// Tolerances for the two arithmetic checks. They are deliberately different
// policies: math trusts the extracted subtotal and is tight, reconciliation
// re-derives the subtotal from line items and is loose.
const (
	mathTolerance           = 0.03 // inclusive
	reconciliationTolerance = 0.1  // exclusive
	maxTaxRatePercent       = 30.0
)

// round2 snaps a derived amount to cents before a tolerance comparison, so
// boundary cases like |10.80 − 10.83| land exactly on 0.03 instead of a
// float64 hair above it.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Math checks that the extracted subtotal plus tax adds up to the extracted
// total within the tight tolerance.
func Math(r entity.CanonicalReceipt) entity.RuleResult {
	sum := round2(r.Subtotal + r.Tax)
	diff := round2(math.Abs(sum - r.Total))
	if diff <= mathTolerance {
		return entity.RuleResult{
			Passed:  true,
			Message: fmt.Sprintf("Subtotal (%.2f) + Tax (%.2f) = %.2f matches Total (%.2f)", r.Subtotal, r.Tax, sum, r.Total),
		}
	}
	return entity.RuleResult{
		Passed:  false,
		Message: fmt.Sprintf("Subtotal (%.2f) + Tax (%.2f) = %.2f differs from Total (%.2f) by %.2f", r.Subtotal, r.Tax, sum, r.Total, diff),
	}
}

// Dup reports whether the duplicate lookup found prior matches. The lookup
// runs before the current record is persisted, so a record never matches
// itself.
func Dup(found bool, count int) entity.RuleResult {
	if !found {
		return entity.RuleResult{Passed: true, Message: "No matching receipt on record"}
	}
	return entity.RuleResult{
		Passed:  false,
		Message: fmt.Sprintf("Found %d existing receipt(s) with the same merchant, date and total", count),
	}
}

// TaxRate checks that tax is a plausible percentage of subtotal. With no
// recovered subtotal there is nothing to judge, so the check passes as N/A.
func TaxRate(r entity.CanonicalReceipt) entity.RuleResult {
	if r.Subtotal <= 0 {
		return entity.RuleResult{Passed: true, Message: "N/A (no subtotal to compute a rate from)"}
	}
	rate := round2(r.Tax / r.Subtotal * 100)
	if rate >= 0 && rate <= maxTaxRatePercent {
		return entity.RuleResult{
			Passed:  true,
			Message: fmt.Sprintf("Tax rate %.2f%% is within 0–%.0f%%", rate, maxTaxRatePercent),
		}
	}
	return entity.RuleResult{
		Passed:  false,
		Message: fmt.Sprintf("Tax rate %.2f%% is outside 0–%.0f%%", rate, maxTaxRatePercent),
	}
}

// Fields checks that the fields extraction is structurally expected to
// recover are not sentinels.
func Fields(r entity.CanonicalReceipt) entity.RuleResult {
	var missing []string
	if r.Merchant == entity.Unknown || r.Merchant == "" {
		missing = append(missing, "Merchant")
	}
	if r.Date == "" {
		missing = append(missing, "Date")
	}
	if r.Total == 0.0 {
		missing = append(missing, "Total")
	}
	if len(missing) == 0 {
		return entity.RuleResult{Passed: true, Message: "Merchant, date and total are all present"}
	}
	return entity.RuleResult{
		Passed:  false,
		Message: "Missing: " + strings.Join(missing, ", "),
	}
}

// Reconciliation re-derives the subtotal from the independently fetched line
// items and compares against the official total. It returns the signed
// discrepancy alongside the result so the presentation layer can show it.
func Reconciliation(items []entity.LineItem, tax, officialTotal float64) (entity.RuleResult, float64) {
	var calculatedSubtotal float64
	for _, it := range items {
		calculatedSubtotal += it.Price * float64(it.Qty)
	}
	calculatedSubtotal = round2(calculatedSubtotal)
	calculatedTotal := round2(calculatedSubtotal + tax)
	discrepancy := round2(officialTotal - calculatedTotal)

	if math.Abs(discrepancy) < reconciliationTolerance {
		return entity.RuleResult{
			Passed: true,
			Message: fmt.Sprintf("Items sum to %.2f + tax %.2f = %.2f, official total %.2f (discrepancy %.2f)",
				calculatedSubtotal, tax, calculatedTotal, officialTotal, discrepancy),
		}, discrepancy
	}
	return entity.RuleResult{
		Passed: false,
		Message: fmt.Sprintf("Items sum to %.2f + tax %.2f = %.2f, but official total is %.2f (discrepancy %.2f)",
			calculatedSubtotal, tax, calculatedTotal, officialTotal, discrepancy),
	}, discrepancy
}

// Evaluator runs the configured subset of checks over one receipt. Rules
// never error; a failing rule is a first-class negative result.
type Evaluator struct {
	enabled map[constants.Rule]struct{}
}

// NewEvaluator builds an evaluator for the given check list. An empty list
// enables every rule.
func NewEvaluator(checks []constants.Rule) *Evaluator {
	if len(checks) == 0 {
		checks = constants.AllRules()
	}
	enabled := make(map[constants.Rule]struct{}, len(checks))
	for _, r := range checks {
		enabled[r] = struct{}{}
	}
	return &Evaluator{enabled: enabled}
}

// Enabled reports whether a rule is part of this evaluator's check list.
func (e *Evaluator) Enabled(rule constants.Rule) bool {
	_, ok := e.enabled[rule]
	return ok
}

// PrePersist evaluates every enabled rule that does not need stored line
// items: math, dup, tax_rate and fields.
func (e *Evaluator) PrePersist(r entity.CanonicalReceipt, dupFound bool, dupCount int) entity.Verdict {
	v := entity.Verdict{}
	if e.Enabled(constants.RuleMath) {
		v[constants.RuleMath] = Math(r)
	}
	if e.Enabled(constants.RuleDup) {
		v[constants.RuleDup] = Dup(dupFound, dupCount)
	}
	if e.Enabled(constants.RuleTaxRate) {
		v[constants.RuleTaxRate] = TaxRate(r)
	}
	if e.Enabled(constants.RuleFields) {
		v[constants.RuleFields] = Fields(r)
	}
	return v
}
