package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/muudzo/tally/internal/model"
)

func txnWithText(description, reference string) model.NormalizedTransaction {
	return model.NormalizedTransaction{
		Description: description,
		Reference:   reference,
	}
}

func TestTextMatcher_Score(t *testing.T) {
	m := NewTextMatcher(0.70)

	t.Run("identical description and reference is a perfect score", func(t *testing.T) {
		a := txnWithText("Payment to Acme Corp", "INV-001")
		b := txnWithText("Payment to Acme Corp", "INV-001")
		assert.Equal(t, 1.0, m.Score(a, b))
	})

	t.Run("case and surrounding whitespace are ignored", func(t *testing.T) {
		a := txnWithText("  PAYMENT TO ACME CORP  ", "INV-001")
		b := txnWithText("payment to acme corp", "INV-001")
		assert.Equal(t, 1.0, m.Score(a, b))
	})

	t.Run("reordered words still score via token sort", func(t *testing.T) {
		a := txnWithText("acme corp payment", "")
		b := txnWithText("payment acme corp", "")
		// Token-sort similarity is 1.0 for the descriptions; empty
		// references contribute nothing.
		assert.InDelta(t, 0.7, m.Score(a, b), 1e-9)
	})

	t.Run("near exact reference lifts a weak description", func(t *testing.T) {
		a := txnWithText("salary june", "EC12345")
		b := txnWithText("completely different words", "EC12345")
		score := m.Score(a, b)
		// 0.6*desc + 0.4*1.0 + 0.1 with a near-zero description score.
		assert.GreaterOrEqual(t, score, 0.5)
		assert.LessOrEqual(t, score, 1.0)
	})

	t.Run("both fields empty score nothing", func(t *testing.T) {
		assert.Equal(t, 0.0, m.Score(txnWithText("", ""), txnWithText("", "")))
	})

	t.Run("unrelated strings score low", func(t *testing.T) {
		a := txnWithText("grocery store purchase", "")
		b := txnWithText("fuel station", "")
		assert.Less(t, m.Score(a, b), 0.5)
	})
}

func TestTextMatcher_IsMatch(t *testing.T) {
	m := NewTextMatcher(0.70)

	assert.True(t, m.IsMatch(
		txnWithText("Payment to Acme Corp", "INV-001"),
		txnWithText("payment to acme corp", "INV-001")))
	assert.False(t, m.IsMatch(
		txnWithText("grocery store purchase", ""),
		txnWithText("fuel station", "")))
}

func TestBestSimilarity(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		assert.Equal(t, 1.0, bestSimilarity("payment", "payment"))
	})

	t.Run("empty operand", func(t *testing.T) {
		assert.Equal(t, 0.0, bestSimilarity("payment", ""))
		assert.Equal(t, 0.0, bestSimilarity("", "payment"))
	})

	t.Run("substring found by partial ratio", func(t *testing.T) {
		assert.Equal(t, 1.0, bestSimilarity("payment", "acme corp payment ref 99"))
	})

	t.Run("duplicated words tolerated by token set", func(t *testing.T) {
		assert.Equal(t, 1.0, bestSimilarity("acme acme payment", "payment acme"))
	})
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 1.0, partialRatio("corp", "acme corp payment"))
	assert.Equal(t, 1.0, partialRatio("acme corp payment", "corp"))
	assert.Equal(t, 0.0, partialRatio("", "anything"))
}

func TestTokenSortRatio(t *testing.T) {
	assert.Equal(t, 1.0, tokenSortRatio("b a c", "a b c"))
	assert.Equal(t, 1.0, tokenSortRatio("john doe payment", "payment john doe"))
}

func TestTokenSetRatio(t *testing.T) {
	assert.Equal(t, 1.0, tokenSetRatio("a a b", "b a"))
	assert.Equal(t, 1.0, tokenSetRatio("payment payment acme", "acme payment"))
}
