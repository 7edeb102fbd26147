package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchScore_Total(t *testing.T) {
	score := MatchScore{
		AmountScore:    1.0,
		TextScore:      1.0,
		DateScore:      1.0,
		ReferenceBonus: 0.1,
	}
	assert.InDelta(t, 1.0, score.Total(), 1e-9)

	zero := MatchScore{}
	assert.Zero(t, zero.Total())
}

func TestMatchScore_Confidence(t *testing.T) {
	tests := []struct {
		name  string
		score MatchScore
		want  MatchConfidence
	}{
		{
			name:  "perfect match with reference bonus is high",
			score: MatchScore{AmountScore: 1.0, TextScore: 1.0, DateScore: 1.0, ReferenceBonus: 0.1},
			want:  ConfidenceHigh,
		},
		{
			name:  "near perfect match is high",
			score: MatchScore{AmountScore: 1.0, TextScore: 0.95, DateScore: 1.0, ReferenceBonus: 0.1},
			want:  ConfidenceHigh,
		},
		{
			// 0.38 + 0.27 + 0.15000000000000002 + 0.1 accumulates to
			// exactly 0.9, so this sits right on the high cutoff.
			name:  "total exactly at the high cutoff is high",
			score: MatchScore{AmountScore: 0.95, TextScore: 0.9, DateScore: 0.75, ReferenceBonus: 0.1},
			want:  ConfidenceHigh,
		},
		{
			// Perfect components without the bonus: the weighted sum
			// accumulates to 0.8999999999999999, a hair under the cutoff.
			name:  "perfect components without bonus fall just under high",
			score: MatchScore{AmountScore: 1.0, TextScore: 1.0, DateScore: 1.0},
			want:  ConfidenceMedium,
		},
		{
			name:  "good match lands in medium",
			score: MatchScore{AmountScore: 1.0, TextScore: 1.0, DateScore: 0.75},
			want:  ConfidenceMedium,
		},
		{
			name:  "total exactly at the medium cutoff is medium",
			score: MatchScore{AmountScore: 0.5, TextScore: 1.0, DateScore: 0.5, ReferenceBonus: 0.1},
			want:  ConfidenceMedium,
		},
		{
			name:  "amount plus half date is exactly low",
			score: MatchScore{AmountScore: 1.0, TextScore: 0, DateScore: 0.5},
			want:  ConfidenceLow,
		},
		{
			name:  "weak signals are none",
			score: MatchScore{AmountScore: 1.0, TextScore: 0, DateScore: 0.25},
			want:  ConfidenceNone,
		},
		{
			name:  "empty score is none",
			score: MatchScore{},
			want:  ConfidenceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.score.Confidence(), "total=%v", tt.score.Total())
		})
	}
}
