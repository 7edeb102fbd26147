// Package normalize transforms raw parsed transaction rows into canonical,
// deduplicated records and checks them for data-quality problems.
package normalize

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/muudzo/tally/internal/model"
)

// Pipeline turns raw rows into normalized transactions.
//
// Stages per row: parse the date, parse the amount, clean the reference,
// fingerprint, deduplicate. Rows whose date or amount cannot be parsed are
// dropped with a logged warning; a bad row never fails the batch.
//
// The dedup seen-set lives for the lifetime of one Pipeline instance, so
// callers get exactly one normalization run per instance and no cross-run
// memory.
type Pipeline struct {
	source model.Source
	seen   map[string]struct{}
}

// NewPipeline creates a normalization pipeline for one batch of rows that all
// share the same logical source.
func NewPipeline(source model.Source) *Pipeline {
	return &Pipeline{
		source: source,
		seen:   make(map[string]struct{}),
	}
}

// Process normalizes and deduplicates a batch of raw rows, preserving the
// order of first occurrence.
func (p *Pipeline) Process(rows []model.RawTransactionRow) []model.NormalizedTransaction {
	normalized := make([]model.NormalizedTransaction, 0, len(rows))

	for _, raw := range rows {
		txn, ok := p.normalizeRow(raw)
		if !ok {
			continue
		}
		if _, dup := p.seen[txn.ID]; dup {
			slog.Debug("Dropping duplicate transaction",
				"id", txn.ID,
				"file", raw.SourceFile,
				"line", raw.LineNumber)
			continue
		}
		p.seen[txn.ID] = struct{}{}
		normalized = append(normalized, txn)
	}

	slog.Info("Normalized transactions",
		"source", p.source,
		"raw", len(rows),
		"normalized", len(normalized))

	return normalized
}

func (p *Pipeline) normalizeRow(raw model.RawTransactionRow) (model.NormalizedTransaction, bool) {
	date, err := ParseDate(raw.RawDate)
	if err != nil {
		slog.Warn("Dropping row with unparsable date",
			"date", raw.RawDate,
			"file", raw.SourceFile,
			"line", raw.LineNumber)
		return model.NormalizedTransaction{}, false
	}

	amount, err := ParseAmount(raw.RawAmount)
	if err != nil {
		slog.Warn("Dropping row with unparsable amount",
			"amount", raw.RawAmount,
			"file", raw.SourceFile,
			"line", raw.LineNumber)
		return model.NormalizedTransaction{}, false
	}

	reference := CleanReference(raw.RawReference)
	description := strings.TrimSpace(raw.Description)

	return model.NormalizedTransaction{
		ID:              model.Fingerprint(date, amount, reference, description),
		TransactionDate: date,
		Amount:          amount,
		Reference:       reference,
		Description:     description,
		Source:          p.source,
		Currency:        "USD",
		Metadata: map[string]string{
			"source_file": raw.SourceFile,
			"line_number": strconv.Itoa(raw.LineNumber),
		},
	}, true
}

// ParseDate parses the many date formats seen in bank exports, preferring
// day-first for ambiguous dd/mm vs mm/dd inputs. The time component is
// discarded.
func ParseDate(s string) (time.Time, error) {
	parsed, err := dateparse.ParseAny(strings.TrimSpace(s), dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseAmount parses an amount string into a decimal. Currency symbols,
// thousands separators and surrounding whitespace are stripped, and
// accounting-style parentheses mean negative: "(500.00)" -> -500.00.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	for _, symbol := range []string{"$", "£", "€"} {
		clean = strings.ReplaceAll(clean, symbol, "")
	}
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, ",", "")

	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = "-" + clean[1:len(clean)-1]
	}

	return decimal.NewFromString(clean)
}

// CleanReference standardizes the reference format: trimmed, upper-cased,
// internal whitespace removed.
func CleanReference(ref string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(ref)), " ", "")
}
