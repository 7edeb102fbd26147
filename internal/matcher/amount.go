// Package matcher implements the pairwise field similarity functions and the
// confidence scorer used by the reconciliation engine. Every matcher is a
// pure function of two transactions; none of them hold mutable state.
package matcher

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/muudzo/tally/internal/model"
)

// AmountMatcher scores transactions by amount with configurable tolerance.
// Absolute values are compared, so a debit can pair with its credit.
type AmountMatcher struct {
	percentageTolerance float64
	absoluteTolerance   decimal.Decimal
}

// NewAmountMatcher creates an amount matcher. percentageTolerance is a
// fraction (0.02 = 2%); absoluteTolerance covers rounding on small amounts.
func NewAmountMatcher(percentageTolerance float64, absoluteTolerance decimal.Decimal) *AmountMatcher {
	return &AmountMatcher{
		percentageTolerance: percentageTolerance,
		absoluteTolerance:   absoluteTolerance,
	}
}

// Score returns amount similarity in [0,1].
//
// The branch order matters: the percentage-tolerance tier is checked before
// the absolute-tolerance tier, which decides which tier wins for small-amount
// edge cases.
func (m *AmountMatcher) Score(txn1, txn2 model.NormalizedTransaction) float64 {
	amt1 := txn1.Amount.Abs()
	amt2 := txn2.Amount.Abs()

	if amt1.Equal(amt2) {
		return 1.0
	}

	if amt1.IsZero() || amt2.IsZero() {
		return 0.0
	}

	diff := amt1.Sub(amt2).Abs()
	avg := amt1.Add(amt2).Div(decimal.NewFromInt(2))
	pctDiff, _ := diff.Div(avg).Float64()

	// Within percentage tolerance: score decreases as the difference grows.
	if pctDiff <= m.percentageTolerance {
		return 1.0 - (pctDiff/m.percentageTolerance)*0.1
	}

	// Absolute tolerance catches rounding differences on small amounts.
	if diff.LessThanOrEqual(m.absoluteTolerance) {
		return 0.95
	}

	// Gradual falloff up to 10% difference, then nothing.
	if pctDiff < 0.10 {
		return math.Max(0.5, 1.0-pctDiff)
	}

	return 0.0
}

// IsMatch reports whether the amounts match within tolerance.
func (m *AmountMatcher) IsMatch(txn1, txn2 model.NormalizedTransaction) bool {
	return m.Score(txn1, txn2) >= 0.9
}

// AmountDiff returns the absolute difference between the two amounts.
func (m *AmountMatcher) AmountDiff(txn1, txn2 model.NormalizedTransaction) decimal.Decimal {
	return txn1.Amount.Sub(txn2.Amount).Abs()
}
