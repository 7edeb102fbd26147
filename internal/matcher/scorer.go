package matcher

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/muudzo/tally/internal/model"
)

// Scoring weights. Amount similarity dominates, then text, then date, with a
// flat bonus for an exact reference match.
const (
	weightAmount   = 0.40
	weightText     = 0.30
	weightDate     = 0.20
	referenceBonus = 0.10
)

// Config holds the tunables for the field matchers.
type Config struct {
	AmountPercentageTolerance float64
	AmountAbsoluteTolerance   decimal.Decimal
	DateWindowDays            int
	TextThreshold             float64
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() Config {
	return Config{
		AmountPercentageTolerance: 0.02,
		AmountAbsoluteTolerance:   decimal.NewFromFloat(0.01),
		DateWindowDays:            3,
		TextThreshold:             0.70,
	}
}

// Scorer combines the three field matchers into one MatchScore.
type Scorer struct {
	amount *AmountMatcher
	date   *DateMatcher
	text   *TextMatcher
}

// NewScorer creates a scorer with the default matcher configuration.
func NewScorer() *Scorer {
	return NewScorerWithConfig(DefaultConfig())
}

// NewScorerWithConfig creates a scorer with custom matcher tunables.
func NewScorerWithConfig(cfg Config) *Scorer {
	return &Scorer{
		amount: NewAmountMatcher(cfg.AmountPercentageTolerance, cfg.AmountAbsoluteTolerance),
		date:   NewDateMatcher(cfg.DateWindowDays),
		text:   NewTextMatcher(cfg.TextThreshold),
	}
}

// Score calculates the detailed match score between a source and a target
// transaction.
func (s *Scorer) Score(source, target model.NormalizedTransaction) model.MatchScore {
	bonus := 0.0
	if exactReferenceMatch(source, target) {
		bonus = referenceBonus
	}

	return model.MatchScore{
		AmountScore:    s.amount.Score(source, target),
		TextScore:      s.text.Score(source, target),
		DateScore:      s.date.Score(source, target),
		ReferenceBonus: bonus,
	}
}

// NeedsManualReview reports whether a score lands in the band that should be
// surfaced to a human rather than auto-accepted or discarded.
func (s *Scorer) NeedsManualReview(score model.MatchScore) bool {
	c := score.Confidence()
	return c == model.ConfidenceLow || c == model.ConfidenceMedium
}

// exactReferenceMatch reports whether both references are non-empty and equal
// after cleanup.
func exactReferenceMatch(t1, t2 model.NormalizedTransaction) bool {
	ref1 := strings.ToUpper(strings.TrimSpace(t1.Reference))
	ref2 := strings.ToUpper(strings.TrimSpace(t2.Reference))
	return ref1 != "" && ref2 != "" && ref1 == ref2
}
