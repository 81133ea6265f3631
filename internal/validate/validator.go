// Package validate decides which extracted line items survive and whether
// numerically inconsistent ones can be repaired without guessing.
package validate

import (
	"log/slog"
	"math"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
)

const (
	// DefaultConfidenceThreshold drops items the oracle itself was unsure about.
	DefaultConfidenceThreshold = 8.5

	// AmountTolerance is the absolute tolerance for quantity*unit_price == total,
	// minor-unit agnostic.
	AmountTolerance = 0.01

	// confidencePenalty is subtracted from an item's confidence when a
	// decimal-scale correction is accepted, as a provenance marker.
	confidencePenalty = 0.7
)

// correctionScales is the declared correction space for decimal-scale repairs.
// Nothing outside this set is ever attempted.
var correctionScales = []float64{0.1, 0.01, 10, 100}

// Validator filters and repairs extracted line items.
type Validator struct {
	logger    *slog.Logger
	threshold float64
}

func NewValidator(threshold float64, logger *slog.Logger) *Validator {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger, threshold: threshold}
}

// FilterByConfidence drops every item whose confidence is present and below
// the validator's threshold. Items without a confidence value are kept;
// confidence is advisory, not mandatory. An empty result is valid.
func (v *Validator) FilterByConfidence(items []entity.LineItem) []entity.LineItem {
	kept := make([]entity.LineItem, 0, len(items))
	for _, it := range items {
		if it.Confidence != nil && *it.Confidence < v.threshold {
			v.logger.Debug("validate.item.dropped_low_confidence",
				"description", it.Description,
				"confidence", *it.Confidence,
				"threshold", v.threshold,
			)
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// ReconcileArithmetic attempts a bounded decimal-scale correction on every
// item where quantity, unit price and total are all present but inconsistent.
// All quantity-scaled candidates are tried before any price-scaled candidate,
// scales in the order 0.1, 0.01, 10, 100; the first candidate whose product
// matches the total within tolerance wins. On acceptance the item is marked
// corrected and its confidence (if present) is reduced by 0.7, floored at 0.
// Items with no matching candidate are left unmodified and inconsistent.
//
// Quantity/unit-price swapping is deliberately not attempted: swap detection
// produced false corrections on plausible-looking mismatches, so the
// correction space is limited to the scales above.
func (v *Validator) ReconcileArithmetic(items []entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(items))
	for _, it := range items {
		if it.HasAmounts() && !amountsMatch(*it.Quantity, *it.UnitPrice, *it.Total) {
			if q, p, ok := findScaleFix(*it.Quantity, *it.UnitPrice, *it.Total); ok {
				v.logger.Info("validate.item.scale_corrected",
					"description", it.Description,
					"quantity", *it.Quantity, "unit_price", *it.UnitPrice,
					"fixed_quantity", q, "fixed_unit_price", p,
					"total", *it.Total,
				)
				it.Quantity = &q
				it.UnitPrice = &p
				it.Corrected = true
				if it.Confidence != nil {
					c := math.Max(0, *it.Confidence-confidencePenalty)
					it.Confidence = &c
				}
			}
		}
		out = append(out, it)
	}
	return out
}

// InvalidRatio returns the fraction of items failing the arithmetic check.
// Items missing any of the three numeric fields count as invalid; the empty
// list is fully invalid (1.0) so callers treat "nothing extracted" as a bad
// attempt.
func (v *Validator) InvalidRatio(items []entity.LineItem) float64 {
	if len(items) == 0 {
		return 1.0
	}
	invalid := 0
	for _, it := range items {
		if !it.HasAmounts() {
			invalid++
			continue
		}
		if !amountsMatch(*it.Quantity, *it.UnitPrice, *it.Total) {
			invalid++
		}
	}
	return float64(invalid) / float64(len(items))
}

func amountsMatch(quantity, unitPrice, total float64) bool {
	return math.Abs(quantity*unitPrice-total) <= AmountTolerance
}

// findScaleFix searches the eight-candidate correction space and returns the
// first (quantity, unitPrice) pair whose product matches the total.
func findScaleFix(quantity, unitPrice, total float64) (float64, float64, bool) {
	for _, s := range correctionScales {
		if amountsMatch(quantity*s, unitPrice, total) {
			return quantity * s, unitPrice, true
		}
	}
	for _, s := range correctionScales {
		if amountsMatch(quantity, unitPrice*s, total) {
			return quantity, unitPrice * s, true
		}
	}
	return 0, 0, false
}
