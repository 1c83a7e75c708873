package constants

import "strings"

// Rule is the canonical name of a validation check.
type Rule string

// Stable values (these exact strings appear in API responses and config).
const (
	RuleMath           Rule = "math"           // subtotal + tax vs total
	RuleDup            Rule = "dup"            // duplicate lookup against the store
	RuleTaxRate        Rule = "tax_rate"       // tax as a percentage of subtotal
	RuleFields         Rule = "fields"         // required field completeness
	RuleReconciliation Rule = "reconciliation" // line-item sum vs official total
)

var allRules = []Rule{
	RuleMath,
	RuleDup,
	RuleTaxRate,
	RuleFields,
	RuleReconciliation,
}

// AllRules returns every known rule name in evaluation order.
func AllRules() []Rule {
	out := make([]Rule, len(allRules))
	copy(out, allRules)
	return out
}

// ParseRule resolves a user-supplied rule name, case-insensitively.
func ParseRule(input string) (Rule, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, r := range allRules {
		if normalized == string(r) {
			return r, true
		}
	}
	return "", false
}
