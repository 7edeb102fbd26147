package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/muudzo/tally/internal/model"
)

// ZipitParser reads ZIPIT interbank transfer exports, which are line-based:
//
//	DATE | REFERENCE | AMOUNT | DESCRIPTION
type ZipitParser struct{}

// NewZipitParser creates a ZIPIT parser.
func NewZipitParser() *ZipitParser {
	return &ZipitParser{}
}

// Name implements Parser.
func (p *ZipitParser) Name() string { return "zipit" }

var zipitLineRe = regexp.MustCompile(`^(\d{2}[/-]\d{2}[/-]\d{4})\s*\|\s*([A-Z0-9]+)\s*\|\s*([\d,.-]+)\s*\|\s*(.+)$`)

// Validate checks that at least two of the first lines match the ZIPIT layout.
func (p *ZipitParser) Validate(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	validLines := 0
	scanner := bufio.NewScanner(f)
	for i := 0; scanner.Scan() && i <= 10; i++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if zipitLineRe.MatchString(line) {
			validLines++
		}
	}
	return validLines >= 2
}

// Parse reads the file, skipping blank lines and # comments.
func (p *ZipitParser) Parse(path string) ([]model.RawTransactionRow, error) {
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
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := zipitLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		rows = append(rows, model.RawTransactionRow{
			RawDate:      m[1],
			RawAmount:    strings.ReplaceAll(m[3], ",", ""),
			RawReference: sanitizeField(m[2]),
			Description:  sanitizeField(m[4]),
			SourceFile:   filepath.Base(path),
			LineNumber:   lineNum,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return rows, nil
}
