package parser

import "strings"

// sanitizeField neutralizes spreadsheet formula injection in a parsed value.
// Values starting with a formula trigger character are prefixed with a single
// quote so downstream CSV/Excel consumers treat them as text.
// See https://owasp.org/www-community/attacks/CSV_Injection
func sanitizeField(value string) string {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return ""
	}

	switch clean[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + clean
	}

	return clean
}
