package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muudzo/tally/internal/common"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBankCSVParser(t *testing.T) {
	p := NewBankCSVParser()

	t.Run("validates on header columns", func(t *testing.T) {
		good := writeFile(t, "bank.csv", "Date,Amount,Reference,Description\n2024-03-15,100.00,INV-001,Payment\n")
		assert.True(t, p.Validate(good))

		bad := writeFile(t, "other.csv", "When,HowMuch\n2024-03-15,100.00\n")
		assert.False(t, p.Validate(bad))
	})

	t.Run("parses rows with line numbers", func(t *testing.T) {
		path := writeFile(t, "bank.csv",
			"Date,Amount,Reference,Description\n"+
				"2024-03-15,1500.00,INV-001,Payment to Acme\n"+
				"2024-03-16,-250.00,INV-002,Refund\n")

		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "2024-03-15", rows[0].RawDate)
		assert.Equal(t, "1500.00", rows[0].RawAmount)
		assert.Equal(t, "INV-001", rows[0].RawReference)
		assert.Equal(t, "Payment to Acme", rows[0].Description)
		assert.Equal(t, "bank.csv", rows[0].SourceFile)
		assert.Equal(t, 2, rows[0].LineNumber)
		assert.Equal(t, 3, rows[1].LineNumber)
	})

	t.Run("handles reordered columns", func(t *testing.T) {
		path := writeFile(t, "bank.csv",
			"Description,Date,Reference,Amount\nPayment,2024-03-15,INV-001,100.00\n")

		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "100.00", rows[0].RawAmount)
		assert.Equal(t, "Payment", rows[0].Description)
	})

	t.Run("neutralizes formula injection", func(t *testing.T) {
		path := writeFile(t, "bank.csv",
			"Date,Amount,Reference,Description\n2024-03-15,100.00,INV-001,=SUM(A1:A9)\n")

		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "'=SUM(A1:A9)", rows[0].Description)
	})
}

func TestZipitParser(t *testing.T) {
	p := NewZipitParser()

	const export = "# ZIPIT export\n" +
		"15/03/2024 | ZIP001 | 1,500.00 | Transfer to supplier\n" +
		"\n" +
		"16/03/2024 | ZIP002 | 250.00 | Interbank payment\n"

	t.Run("validates on two matching lines", func(t *testing.T) {
		assert.True(t, p.Validate(writeFile(t, "zipit.txt", export)))

		oneLine := "15/03/2024 | ZIP001 | 100.00 | Only one row\n"
		assert.False(t, p.Validate(writeFile(t, "short.txt", oneLine)))
	})

	t.Run("parses lines skipping comments and blanks", func(t *testing.T) {
		rows, err := p.Parse(writeFile(t, "zipit.txt", export))
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "15/03/2024", rows[0].RawDate)
		assert.Equal(t, "ZIP001", rows[0].RawReference)
		assert.Equal(t, "1500.00", rows[0].RawAmount, "thousands separator stripped")
		assert.Equal(t, "Transfer to supplier", rows[0].Description)
		assert.Equal(t, 2, rows[0].LineNumber)
		assert.Equal(t, 4, rows[1].LineNumber)
	})
}

func TestEcocashParser_Text(t *testing.T) {
	p := NewEcocashParser()

	t.Run("received line", func(t *testing.T) {
		path := writeFile(t, "ecocash.txt",
			"You have received $1,100.00 from John Doe (263771234567) on 15/01/2024\n")

		require.True(t, p.Validate(path))
		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, "1100.00", rows[0].RawAmount)
		assert.Equal(t, "15/01/2024", rows[0].RawDate)
		assert.Equal(t, "Received from John Doe", rows[0].Description)
	})

	t.Run("sent line is negative", func(t *testing.T) {
		path := writeFile(t, "ecocash.txt",
			"Sent $50.00 to Jane Smith on 16/01/2024\n")

		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "-50.00", rows[0].RawAmount)
		assert.Equal(t, "Sent to Jane Smith", rows[0].Description)
	})

	t.Run("reference extracted from free text", func(t *testing.T) {
		path := writeFile(t, "ecocash.txt",
			"Transfer of $50.00 received by Jane Smith on 16/01/2024. Ref: EC12345\n")

		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "EC12345", rows[0].RawReference)
		assert.Equal(t, "50.00", rows[0].RawAmount)
	})

	t.Run("lines without an amount are skipped", func(t *testing.T) {
		path := writeFile(t, "ecocash.txt",
			"Your EcoCash statement for January\n"+
				"You have received $20.00 from Bob on 02/01/2024\n")

		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 2, rows[0].LineNumber)
	})
}

func TestEcocashParser_CSV(t *testing.T) {
	p := NewEcocashParser()

	t.Run("standard layout", func(t *testing.T) {
		path := writeFile(t, "ecocash.csv",
			"date,amount,description\n15/01/2024,100.00,Airtime purchase Ref: EC999\n")

		require.True(t, p.Validate(path))
		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		assert.Equal(t, "15/01/2024", rows[0].RawDate)
		assert.Equal(t, "100.00", rows[0].RawAmount)
		assert.Equal(t, "EC999", rows[0].RawReference, "reference recovered from the description")
	})

	t.Run("alternate column names", func(t *testing.T) {
		path := writeFile(t, "ecocash.csv",
			"transaction_date,value,details\n16/01/2024,\"2,500.00\",Merchant payment\n")

		require.True(t, p.Validate(path))
		rows, err := p.Parse(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "16/01/2024", rows[0].RawDate)
		assert.Equal(t, "2500.00", rows[0].RawAmount)
		assert.Equal(t, "Merchant payment", rows[0].Description)
	})
}

func TestForFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantName string
	}{
		{
			name:     "bank csv",
			file:     "statement.csv",
			content:  "Date,Amount,Reference,Description\n2024-03-15,100.00,INV-001,Payment\n",
			wantName: "bank",
		},
		{
			name:     "zipit export",
			file:     "transfers.txt",
			content:  "15/03/2024 | ZIP001 | 100.00 | A\n16/03/2024 | ZIP002 | 200.00 | B\n",
			wantName: "zipit",
		},
		{
			name:     "ecocash log",
			file:     "log.txt",
			content:  "You have received $20.00 from Bob on 02/01/2024\n",
			wantName: "ecocash",
		},
		{
			name:     "ofx by extension",
			file:     "statement.ofx",
			content:  "OFXHEADER:100\n",
			wantName: "ofx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ForFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := ForFile(writeFile(t, "notes.txt", "random notes\nnothing transactional here\n"))
		assert.ErrorIs(t, err, common.ErrUnknownFormat)
	})
}

func TestByType(t *testing.T) {
	p, err := ByType("zipit")
	require.NoError(t, err)
	assert.Equal(t, "zipit", p.Name())

	_, err = ByType("quickbooks")
	assert.ErrorIs(t, err, common.ErrUnknownFormat)
}

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Payment to Acme", "Payment to Acme"},
		{"=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"+263771234567", "'+263771234567"},
		{"@import", "'@import"},
		{"  padded  ", "padded"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeField(tt.input))
	}
}
