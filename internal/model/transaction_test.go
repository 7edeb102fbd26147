package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("1500.00")

	t.Run("deterministic", func(t *testing.T) {
		first := Fingerprint(date, amount, "REF-001", "Payment")
		second := Fingerprint(date, amount, "REF-001", "Payment")
		assert.Equal(t, first, second)
	})

	t.Run("sixteen hex characters", func(t *testing.T) {
		id := Fingerprint(date, amount, "REF-001", "Payment")
		assert.Len(t, id, 16)
		assert.Regexp(t, "^[0-9a-f]{16}$", id)
	})

	t.Run("content changes the fingerprint", func(t *testing.T) {
		base := Fingerprint(date, amount, "REF-001", "Payment")
		assert.NotEqual(t, base, Fingerprint(date.AddDate(0, 0, 1), amount, "REF-001", "Payment"))
		assert.NotEqual(t, base, Fingerprint(date, decimal.RequireFromString("1500.01"), "REF-001", "Payment"))
		assert.NotEqual(t, base, Fingerprint(date, amount, "REF-002", "Payment"))
		assert.NotEqual(t, base, Fingerprint(date, amount, "REF-001", "Refund"))
	})
}
