// Package parser reads raw transaction files in the supported export formats
// and produces verbatim rows for the normalizer. Each format is a strategy
// behind the same interface; detection tries each parser in priority order.
package parser

import (
	"fmt"

	"github.com/muudzo/tally/internal/common"
	"github.com/muudzo/tally/internal/model"
)

// Parser reads one raw file format.
type Parser interface {
	// Name is the short format name used for explicit selection.
	Name() string
	// Validate sniffs whether the file looks like this parser's format.
	Validate(path string) bool
	// Parse reads the file into raw transaction rows.
	Parse(path string) ([]model.RawTransactionRow, error)
}

// Registry returns the supported parsers in detection priority order.
func Registry() []Parser {
	return []Parser{
		NewBankCSVParser(),
		NewOFXParser(),
		NewZipitParser(),
		NewEcocashParser(),
	}
}

// ForFile detects the format of a file by trying each registered parser.
func ForFile(path string) (Parser, error) {
	for _, p := range Registry() {
		if p.Validate(path) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", common.ErrUnknownFormat, path)
}

// ByType returns the parser for an explicit format name.
func ByType(name string) (Parser, error) {
	for _, p := range Registry() {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown parser type %q", common.ErrUnknownFormat, name)
}
