package normalize

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muudzo/tally/internal/model"
)

func txnWith(amount string, year int, description string) model.NormalizedTransaction {
	return model.NormalizedTransaction{
		ID:              fmt.Sprintf("txn-%s-%d", amount, year),
		TransactionDate: time.Date(year, 6, 15, 0, 0, 0, 0, time.UTC),
		Amount:          decimal.RequireFromString(amount),
		Reference:       "REF-001",
		Description:     description,
		Source:          model.SourceBankStatement,
	}
}

func TestValidator_ValidateBatch(t *testing.T) {
	t.Run("clean transactions pass", func(t *testing.T) {
		v := NewValidator()
		valid, invalid := v.ValidateBatch([]model.NormalizedTransaction{
			txnWith("100.00", 2024, "Payment"),
			txnWith("-50.00", 2024, "Refund"),
		})

		assert.Len(t, valid, 2)
		assert.Empty(t, invalid)
		report := v.Report()
		assert.Zero(t, report.TotalErrors)
		assert.Zero(t, report.TotalWarnings)
	})

	t.Run("oversized amount is invalid", func(t *testing.T) {
		v := NewValidator()
		valid, invalid := v.ValidateBatch([]model.NormalizedTransaction{
			txnWith("1000000001.00", 2024, "Fat finger"),
		})

		assert.Empty(t, valid)
		require.Len(t, invalid, 1)
		require.Len(t, v.Report().Errors, 1)
		assert.Contains(t, v.Report().Errors[0].Message, "exceeds limit")
	})

	t.Run("amount exactly at the limit passes", func(t *testing.T) {
		v := NewValidator()
		valid, _ := v.ValidateBatch([]model.NormalizedTransaction{
			txnWith("1000000000.00", 2024, "Big but allowed"),
		})
		assert.Len(t, valid, 1)
	})

	t.Run("pre-2000 date is invalid", func(t *testing.T) {
		v := NewValidator()
		valid, invalid := v.ValidateBatch([]model.NormalizedTransaction{
			txnWith("100.00", 1999, "Y2K era"),
		})

		assert.Empty(t, valid)
		require.Len(t, invalid, 1)
		assert.Contains(t, v.Report().Errors[0].Message, "Date too old")
	})

	t.Run("zero amount is a warning not an error", func(t *testing.T) {
		v := NewValidator()
		valid, invalid := v.ValidateBatch([]model.NormalizedTransaction{
			txnWith("0.00", 2024, "Zero value"),
		})

		assert.Len(t, valid, 1, "warned transactions still participate in matching")
		assert.Empty(t, invalid)
		report := v.Report()
		assert.Zero(t, report.TotalErrors)
		assert.Equal(t, 1, report.TotalWarnings)
	})

	t.Run("blank description is a warning", func(t *testing.T) {
		v := NewValidator()
		valid, _ := v.ValidateBatch([]model.NormalizedTransaction{
			txnWith("100.00", 2024, "   "),
		})

		assert.Len(t, valid, 1)
		require.Len(t, v.Report().Warnings, 1)
		assert.Equal(t, "Empty description", v.Report().Warnings[0].Message)
	})

	t.Run("one transaction can carry errors and warnings", func(t *testing.T) {
		v := NewValidator()
		_, invalid := v.ValidateBatch([]model.NormalizedTransaction{
			txnWith("1000000001.00", 1999, ""),
		})

		require.Len(t, invalid, 1)
		report := v.Report()
		assert.Equal(t, 2, report.TotalErrors)
		assert.Equal(t, 1, report.TotalWarnings)
	})
}

func TestValidator_ReportCap(t *testing.T) {
	v := NewValidator()

	txns := make([]model.NormalizedTransaction, 75)
	for i := range txns {
		txns[i] = model.NormalizedTransaction{
			ID:              fmt.Sprintf("txn-%d", i),
			TransactionDate: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
			Amount:          decimal.NewFromInt(int64(i)),
			Description:     "Old",
		}
	}
	_, invalid := v.ValidateBatch(txns)
	require.Len(t, invalid, 75)

	report := v.Report()
	assert.Equal(t, 75, report.TotalErrors, "totals are never capped")
	assert.Len(t, report.Errors, 50, "the issue list is capped")
}
