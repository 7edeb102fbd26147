package model

import "github.com/shopspring/decimal"

// MatchStatus is the outcome assigned to a candidate pairing.
type MatchStatus string

// Match status constants. StatusUnmatched is a logical bucket used by report
// and storage consumers; the engine never assigns it to a result directly.
const (
	StatusMatched      MatchStatus = "MATCHED"
	StatusUnmatched    MatchStatus = "UNMATCHED"
	StatusPartial      MatchStatus = "PARTIAL"
	StatusManualReview MatchStatus = "MANUAL_REVIEW"
)

// MatchConfidence buckets a total score for human consumption.
type MatchConfidence string

// Confidence levels.
const (
	ConfidenceHigh   MatchConfidence = "high"   // >= 0.90
	ConfidenceMedium MatchConfidence = "medium" // 0.70-0.89
	ConfidenceLow    MatchConfidence = "low"    // 0.50-0.69
	ConfidenceNone   MatchConfidence = "none"   // < 0.50
)

// How a match was produced.
const (
	MatchedByExactReference = "exact_reference"
	MatchedByFuzzy          = "fuzzy"
)

// MatchScore is the per-field breakdown behind one pairing decision. Every
// decision the engine makes is reproducible from these four numbers.
type MatchScore struct {
	AmountScore    float64 // 0-1
	TextScore      float64 // 0-1
	DateScore      float64 // 0-1
	ReferenceBonus float64 // 0 or 0.1
}

// Total combines the components into the weighted composite score.
func (s MatchScore) Total() float64 {
	return 0.4*s.AmountScore + 0.3*s.TextScore + 0.2*s.DateScore + s.ReferenceBonus
}

// Confidence buckets the total score.
func (s MatchScore) Confidence() MatchConfidence {
	total := s.Total()
	switch {
	case total >= 0.90:
		return ConfidenceHigh
	case total >= 0.70:
		return ConfidenceMedium
	case total >= 0.50:
		return ConfidenceLow
	}
	return ConfidenceNone
}

// MatchResult pairs one source transaction with one target transaction.
// Created only by the reconciliation engine; read-only afterward.
type MatchResult struct {
	Source    NormalizedTransaction
	Target    NormalizedTransaction
	Score     MatchScore
	Status    MatchStatus
	MatchedBy string
	Notes     string
}

// ReconciliationSummary holds the aggregate statistics for one reconcile run,
// computed once from the final match set.
type ReconciliationSummary struct {
	TotalSourceTransactions int
	TotalTargetTransactions int
	MatchedCount            int
	UnmatchedSourceCount    int
	UnmatchedTargetCount    int
	ManualReviewCount       int
	MatchRate               float64
	TotalMatchedAmount      decimal.Decimal
	TotalUnmatchedAmount    decimal.Decimal
}
