package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/receipt-engine/constants"
	"github.com/joseph-ayodele/receipt-engine/internal/entity"
)

func TestMathBoundary(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		tax      float64
		total    float64
		pass     bool
	}{
		{"exact", 8.00, 0.64, 8.64, true},
		{"at tolerance", 10.00, 0.80, 10.83, true},
		{"past tolerance", 10.00, 0.80, 10.84, false},
		{"all zero", 0, 0, 0, true},
		{"subtotal missing", 0, 0.64, 8.64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Math(entity.CanonicalReceipt{Subtotal: tt.subtotal, Tax: tt.tax, Total: tt.total})
			assert.Equal(t, tt.pass, res.Passed, res.Message)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestDup(t *testing.T) {
	assert.True(t, Dup(false, 0).Passed)

	res := Dup(true, 2)
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "2")
}

func TestTaxRateBoundary(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		tax      float64
		pass     bool
	}{
		{"typical", 100, 8.25, true},
		{"zero tax", 100, 0, true},
		{"at ceiling", 100, 30, true},
		{"past ceiling", 100, 30.01, false},
		{"no subtotal is vacuous", 0, 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := TaxRate(entity.CanonicalReceipt{Subtotal: tt.subtotal, Tax: tt.tax})
			assert.Equal(t, tt.pass, res.Passed, res.Message)
		})
	}
}

func TestFieldsListsMissing(t *testing.T) {
	res := Fields(entity.CanonicalReceipt{Merchant: "Acme", Date: "01/15/2024", Total: 8.64})
	assert.True(t, res.Passed)

	res = Fields(entity.CanonicalReceipt{Merchant: entity.Unknown, Date: "01/15/2024", Total: 0})
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "Merchant")
	assert.Contains(t, res.Message, "Total")
	assert.NotContains(t, res.Message, "Date")
}

func TestReconciliation(t *testing.T) {
	items := []entity.LineItem{
		{Name: "Coffee", Qty: 2, Price: 4.00},
		{Name: "Bagel", Qty: 1, Price: 2.50},
	}

	// 2×4.00 + 2.50 = 10.50; + tax 0.85 = 11.35
	res, disc := Reconciliation(items, 0.85, 11.35)
	assert.True(t, res.Passed)
	assert.Equal(t, 0.0, disc)

	res, disc = Reconciliation(items, 0.85, 11.44)
	assert.True(t, res.Passed, "0.09 is inside the exclusive 0.1 tolerance")
	assert.Equal(t, 0.09, disc)

	res, disc = Reconciliation(items, 0.85, 11.45)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.10, disc)

	res, disc = Reconciliation(nil, 0, 5.00)
	assert.False(t, res.Passed)
	assert.Equal(t, 5.00, disc)
}

func TestEvaluatorRunsOnlyEnabledRules(t *testing.T) {
	e := NewEvaluator([]constants.Rule{constants.RuleMath, constants.RuleFields})
	rec := entity.CanonicalReceipt{Merchant: "Acme", Date: "01/15/2024", Subtotal: 8.00, Tax: 0.64, Total: 8.64}

	v := e.PrePersist(rec, true, 3)

	assert.Contains(t, v, constants.RuleMath)
	assert.Contains(t, v, constants.RuleFields)
	assert.NotContains(t, v, constants.RuleDup)
	assert.NotContains(t, v, constants.RuleTaxRate)
	assert.True(t, v.AllPassed())
}

func TestEvaluatorEmptyListEnablesAll(t *testing.T) {
	e := NewEvaluator(nil)
	for _, r := range constants.AllRules() {
		assert.True(t, e.Enabled(r), r)
	}
}

func TestVerdictFailedOrder(t *testing.T) {
	e := NewEvaluator(nil)
	rec := entity.CanonicalReceipt{Merchant: entity.Unknown, Date: "01/15/2024", Total: 8.64, Tax: 0.64}

	v := e.PrePersist(rec, true, 1)

	failed := v.Failed()
	assert.Equal(t, []constants.Rule{constants.RuleMath, constants.RuleDup, constants.RuleFields}, failed)
}
