package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/muudzo/tally/internal/model"
)

// BankCSVParser reads generic bank statement CSVs with a
// Date,Amount,Reference,Description header.
type BankCSVParser struct{}

// NewBankCSVParser creates a bank CSV parser.
func NewBankCSVParser() *BankCSVParser {
	return &BankCSVParser{}
}

// Name implements Parser.
func (p *BankCSVParser) Name() string { return "bank" }

var bankRequiredCols = []string{"Date", "Amount", "Reference", "Description"}

// Validate checks that the header row carries the required columns.
func (p *BankCSVParser) Validate(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return false
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}
	for _, required := range bankRequiredCols {
		if _, ok := cols[required]; !ok {
			return false
		}
	}
	return true
}

// Parse reads the CSV into raw rows. String fields are sanitized immediately.
func (p *BankCSVParser) Parse(path string) ([]model.RawTransactionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[h] = i
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	rows := make([]model.RawTransactionRow, 0, len(records)-1)
	for i, record := range records[1:] {
		rows = append(rows, model.RawTransactionRow{
			RawDate:      field(record, "Date"),
			RawAmount:    field(record, "Amount"),
			RawReference: sanitizeField(field(record, "Reference")),
			Description:  sanitizeField(field(record, "Description")),
			SourceFile:   filepath.Base(path),
			LineNumber:   i + 2, // header is line 1
		})
	}

	return rows, nil
}
