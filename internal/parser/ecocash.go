package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/muudzo/tally/internal/model"
)

// EcocashParser reads Ecocash mobile-money exports, which show up both as
// structured CSVs and as SMS-style transaction logs:
//
//	"You have received $100.00 from John Doe (263771234567) on 15/01/2024"
//	"Transfer of $50.00 to Jane Smith completed. Ref: EC12345"
type EcocashParser struct{}

// NewEcocashParser creates an Ecocash parser.
func NewEcocashParser() *EcocashParser {
	return &EcocashParser{}
}

// Name implements Parser.
func (p *EcocashParser) Name() string { return "ecocash" }

var (
	ecocashReceivedRe = regexp.MustCompile(`(?i)(?:received|got)\s+\$?([\d,]+(?:\.\d{2})?)\s+from\s+([A-Za-z\s]+?)\s*(?:\((\d+)\))?\s*(?:on\s+)?(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})?\s*$`)
	ecocashSentRe     = regexp.MustCompile(`(?i)(?:sent|transferred?|paid)\s+\$?([\d,]+(?:\.\d{2})?)\s+to\s+([A-Za-z\s]+?)\s*(?:\((\d+)\))?\s*(?:on\s+)?(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})?\s*$`)
	ecocashRefRe      = regexp.MustCompile(`(?i)\b(?:ref(?:erence)?|txn|id)[:\s]+([A-Z0-9]+)`)
	ecocashAmountRe   = regexp.MustCompile(`\$?([\d,]+(?:\.\d{2})?)`)
	ecocashDateRe     = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
)

var (
	ecocashExpectedCols  = []string{"date", "amount", "description"}
	ecocashAlternateCols = []string{"transaction_date", "value", "details"}
)

// Validate accepts structured Ecocash CSVs and text exports containing
// Ecocash-looking transaction language.
func (p *EcocashParser) Validate(path string) bool {
	if strings.HasSuffix(path, ".csv") {
		if cols, err := readHeader(path); err == nil {
			if hasAll(cols, ecocashExpectedCols) || hasAll(cols, ecocashAlternateCols) {
				return true
			}
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 2048)
	n, _ := f.Read(buf)
	content := strings.ToLower(string(buf[:n]))
	for _, marker := range []string{"ecocash", "econet", "received", "transferred"} {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

// Parse reads an Ecocash export, trying the structured CSV layout first and
// falling back to line-by-line text extraction.
func (p *EcocashParser) Parse(path string) ([]model.RawTransactionRow, error) {
	if strings.HasSuffix(path, ".csv") {
		if rows, err := p.parseCSV(path); err == nil {
			return rows, nil
		}
	}
	return p.parseText(path)
}

func (p *EcocashParser) parseCSV(path string) ([]model.RawTransactionRow, error) {
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

	// Normalize header names and fold the alternate layout onto the standard one.
	colAliases := map[string]string{
		"transaction_date": "date",
		"trans_date":       "date",
		"value":            "amount",
		"trans_amount":     "amount",
		"details":          "description",
		"ref":              "reference",
	}
	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		if alias, ok := colAliases[name]; ok {
			name = alias
		}
		cols[name] = i
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
		desc := field(record, "description")
		ref := field(record, "reference")
		if ref == "" {
			if m := ecocashRefRe.FindStringSubmatch(desc); m != nil {
				ref = m[1]
			}
		}

		rows = append(rows, model.RawTransactionRow{
			RawDate:      field(record, "date"),
			RawAmount:    strings.ReplaceAll(field(record, "amount"), ",", ""),
			RawReference: sanitizeField(ref),
			Description:  sanitizeField(desc),
			SourceFile:   filepath.Base(path),
			LineNumber:   i + 2,
		})
	}

	return rows, nil
}

func (p *EcocashParser) parseText(path string) ([]model.RawTransactionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var rows []model.RawTransactionRow
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if row, ok := p.extractFromText(line, path, lineNum); ok {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return rows, nil
}

// extractFromText pulls transaction fields out of one SMS-style line. Lines
// without a recognizable amount are skipped.
func (p *EcocashParser) extractFromText(text, path string, lineNum int) (model.RawTransactionRow, bool) {
	var amount, date, reference string
	description := text
	if len(description) > 100 {
		description = description[:100]
	}

	if m := ecocashReceivedRe.FindStringSubmatch(text); m != nil {
		amount = m[1]
		description = "Received from " + strings.TrimSpace(m[2])
		date = m[4]
	} else if m := ecocashSentRe.FindStringSubmatch(text); m != nil {
		amount = "-" + m[1] // outgoing
		description = "Sent to " + strings.TrimSpace(m[2])
		date = m[4]
	}

	if m := ecocashRefRe.FindStringSubmatch(text); m != nil {
		reference = m[1]
	}

	if amount == "" {
		if m := ecocashAmountRe.FindStringSubmatch(text); m != nil {
			amount = m[1]
		}
	}
	if date == "" {
		if m := ecocashDateRe.FindStringSubmatch(text); m != nil {
			date = m[1]
		}
	}

	if amount == "" {
		return model.RawTransactionRow{}, false
	}

	return model.RawTransactionRow{
		RawDate:      date,
		RawAmount:    strings.ReplaceAll(amount, ",", ""),
		RawReference: sanitizeField(reference),
		Description:  sanitizeField(description),
		SourceFile:   filepath.Base(path),
		LineNumber:   lineNum,
	}, true
}

// readHeader reads the lower-cased header columns of a CSV file.
func readHeader(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols, nil
}

func hasAll(cols map[string]int, names []string) bool {
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			return false
		}
	}
	return true
}
