package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipt-engine/constants"
)

// RuleResult is the outcome of one validation check. A failing result is a
// first-class negative answer, not an error.
type RuleResult struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Verdict maps rule names to their results. It is recomputed per upload and
// never persisted.
type Verdict map[constants.Rule]RuleResult

// AllPassed reports whether every evaluated rule passed.
func (v Verdict) AllPassed() bool {
	for _, res := range v {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns the names of failing rules in canonical rule order.
func (v Verdict) Failed() []constants.Rule {
	var out []constants.Rule
	for _, r := range constants.AllRules() {
		if res, ok := v[r]; ok && !res.Passed {
			out = append(out, r)
		}
	}
	return out
}

// PipelineResult carries everything one processed upload produced. The caller
// passes it from extraction through validation to presentation; there is no
// ambient shared state between uploads.
type PipelineResult struct {
	ReceiptID      uuid.UUID         `json:"receipt_id"`
	Receipt        CanonicalReceipt  `json:"receipt"`
	Verdict        Verdict           `json:"verdict"`
	Discrepancy    float64           `json:"discrepancy"`
	SourceFilename string            `json:"source_filename"`
	Backend        constants.Backend `json:"backend"`
	OCRConfidence  *float32          `json:"ocr_confidence,omitempty"`
	NeedsReview    bool              `json:"needs_review"`
	ProcessedAt    time.Time         `json:"processed_at"`
	ElapsedMS      int64             `json:"elapsed_ms"`
}
