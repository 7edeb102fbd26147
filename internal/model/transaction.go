// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which system a transaction batch came from.
type Source string

// Known transaction sources.
const (
	SourceBankStatement Source = "bank_statement"
	SourceEcocash       Source = "ecocash"
	SourceZipit         Source = "zipit"
	SourceInvoice       Source = "invoice"
	SourceManual        Source = "manual"
)

// RawTransactionRow is a transaction row exactly as a parser read it, with
// every field still a verbatim string. Parsers produce these; the normalizer
// consumes them. Nothing else touches them.
type RawTransactionRow struct {
	RawDate      string
	RawAmount    string
	RawReference string
	Description  string
	SourceFile   string
	LineNumber   int
}

// NormalizedTransaction is the canonical transaction record. Treated as
// immutable once constructed: only the normalizer creates one, and no code
// anywhere mutates one afterward.
type NormalizedTransaction struct {
	ID              string
	TransactionDate time.Time
	Amount          decimal.Decimal
	Reference       string
	Description     string
	Source          Source
	Currency        string
	Metadata        map[string]string
}

// Fingerprint derives the content hash used as a transaction ID. Two rows
// with identical canonical content always produce the same fingerprint, which
// is what the normalizer's in-run deduplication relies on.
func Fingerprint(date time.Time, amount decimal.Decimal, reference, description string) string {
	content := fmt.Sprintf("%s|%s|%s|%s",
		date.Format("2006-01-02"),
		amount.String(),
		reference,
		description)
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)[:16]
}
