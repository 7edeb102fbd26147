package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/muudzo/tally/internal/model"
)

// OFXParser reads OFX/QFX bank and credit card statements.
type OFXParser struct{}

// NewOFXParser creates an OFX parser.
func NewOFXParser() *OFXParser {
	return &OFXParser{}
}

// Name implements Parser.
func (p *OFXParser) Name() string { return "ofx" }

// Validate accepts .ofx/.qfx extensions or files whose head carries an OFX marker.
func (p *OFXParser) Validate(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	head := strings.ToUpper(string(buf[:n]))
	return strings.Contains(head, "<OFX>") || strings.Contains(head, "OFXHEADER")
}

var (
	ofxSeverityRe = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	ofxOpenTagRe  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocess fixes common formatting issues in bank-exported OFX files:
// leading whitespace before the header, mixed-case SEVERITY values, and
// SGML-style tags missing their closing bracket.
func (p *OFXParser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = ofxSeverityRe.ReplaceAllStringFunc(content, strings.ToUpper)
	content = ofxOpenTagRe.ReplaceAllString(content, "$1>")
	return content
}

// Parse reads the statements in the file and flattens their transactions
// into raw rows.
func (p *OFXParser) Parse(path string) ([]model.RawTransactionRow, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file %s: %w", path, err)
	}

	var rows []model.RawTransactionRow
	appendTxns := func(txns []ofxgo.Transaction) {
		for _, ofxTx := range txns {
			rows = append(rows, p.convertTransaction(ofxTx, path, len(rows)+1))
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			appendTxns(stmt.BankTranList.Transactions)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			appendTxns(stmt.BankTranList.Transactions)
		}
	}

	return rows, nil
}

// convertTransaction flattens one OFX transaction into a raw row. OFX data is
// already typed, but the normalizer owns canonicalization, so fields go back
// to their string form here.
func (p *OFXParser) convertTransaction(ofxTx ofxgo.Transaction, path string, position int) model.RawTransactionRow {
	description := strings.TrimSpace(string(ofxTx.Name))
	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		description = strings.TrimSpace(string(ofxTx.Payee.Name))
	}
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" && description == "" {
		description = memo
	}

	// Prefer an explicit reference number, then check number, then the
	// bank's transaction ID.
	reference := string(ofxTx.RefNum)
	if reference == "" {
		reference = string(ofxTx.CheckNum)
	}
	if reference == "" {
		reference = string(ofxTx.FiTID)
	}

	return model.RawTransactionRow{
		RawDate:      ofxTx.DtPosted.Time.Format("2006-01-02"),
		RawAmount:    ofxTx.TrnAmt.String(),
		RawReference: sanitizeField(reference),
		Description:  sanitizeField(description),
		SourceFile:   filepath.Base(path),
		LineNumber:   position,
	}
}
