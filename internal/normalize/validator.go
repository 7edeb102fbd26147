package normalize

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/muudzo/tally/internal/model"
)

// Validation limits.
var maxAmount = decimal.NewFromInt(1_000_000_000)

const minDateYear = 2000

// reportCap bounds how many issues the validation report carries.
const reportCap = 50

// Issue records one validation finding against a transaction.
type Issue struct {
	TransactionID string
	Message       string
}

// Report is the accumulated validation outcome for observability. Issue
// lists are capped; the totals are not.
type Report struct {
	TotalErrors   int
	TotalWarnings int
	Errors        []Issue
	Warnings      []Issue
}

// Validator checks normalized transactions for data-quality violations.
//
// Hard violations (amount out of range, date before 2000) move a transaction
// to the invalid partition. Soft issues (zero amount, blank description) are
// recorded as warnings but the transaction still participates in matching.
// Validation never fails a batch.
type Validator struct {
	errors   []Issue
	warnings []Issue
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateBatch partitions transactions into valid and invalid.
func (v *Validator) ValidateBatch(txns []model.NormalizedTransaction) (valid, invalid []model.NormalizedTransaction) {
	for _, txn := range txns {
		if v.validate(txn) {
			valid = append(valid, txn)
		} else {
			invalid = append(invalid, txn)
		}
	}

	slog.Info("Validated transactions",
		"valid", len(valid),
		"invalid", len(invalid),
		"warnings", len(v.warnings))

	return valid, invalid
}

func (v *Validator) validate(txn model.NormalizedTransaction) bool {
	ok := true

	if txn.Amount.IsZero() {
		v.warnings = append(v.warnings, Issue{txn.ID, "Zero amount transaction"})
	}

	if txn.Amount.Abs().GreaterThan(maxAmount) {
		v.errors = append(v.errors, Issue{txn.ID, fmt.Sprintf("Amount exceeds limit: %s", txn.Amount)})
		ok = false
	}

	if txn.TransactionDate.Year() < minDateYear {
		v.errors = append(v.errors, Issue{txn.ID, fmt.Sprintf("Date too old: %s", txn.TransactionDate.Format("2006-01-02"))})
		ok = false
	}

	if strings.TrimSpace(txn.Description) == "" {
		v.warnings = append(v.warnings, Issue{txn.ID, "Empty description"})
	}

	return ok
}

// Report returns the capped validation report.
func (v *Validator) Report() Report {
	return Report{
		TotalErrors:   len(v.errors),
		TotalWarnings: len(v.warnings),
		Errors:        capIssues(v.errors),
		Warnings:      capIssues(v.warnings),
	}
}

func capIssues(issues []Issue) []Issue {
	if len(issues) > reportCap {
		return issues[:reportCap]
	}
	return issues
}
