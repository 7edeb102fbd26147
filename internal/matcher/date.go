package matcher

import (
	"time"

	"github.com/muudzo/tally/internal/model"
)

// DateMatcher scores transactions by date proximity within a fixed window.
type DateMatcher struct {
	windowDays int
}

// NewDateMatcher creates a date matcher that accepts dates up to windowDays apart.
func NewDateMatcher(windowDays int) *DateMatcher {
	return &DateMatcher{windowDays: windowDays}
}

// Score returns 1.0 for same-day transactions, 0.0 outside the window, and a
// linear decay in between.
func (m *DateMatcher) Score(txn1, txn2 model.NormalizedTransaction) float64 {
	daysDiff := daysBetween(txn1.TransactionDate, txn2.TransactionDate)

	if daysDiff == 0 {
		return 1.0
	}

	if daysDiff > m.windowDays {
		return 0.0
	}

	return 1.0 - float64(daysDiff)/float64(m.windowDays+1)
}

// IsMatch reports whether the dates fall within the window.
func (m *DateMatcher) IsMatch(txn1, txn2 model.NormalizedTransaction) bool {
	return daysBetween(txn1.TransactionDate, txn2.TransactionDate) <= m.windowDays
}

// DateRange returns the window of acceptable dates around a transaction.
func (m *DateMatcher) DateRange(txn model.NormalizedTransaction) (time.Time, time.Time) {
	start := txn.TransactionDate.AddDate(0, 0, -m.windowDays)
	end := txn.TransactionDate.AddDate(0, 0, m.windowDays)
	return start, end
}

// daysBetween returns the absolute whole-day difference between two dates.
// Normalized transaction dates carry no time component, so the division is exact.
func daysBetween(a, b time.Time) int {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}
