// ABOUTME: Escaping for user supplied values embedded in SOQL
// ABOUTME: All string literals in generated queries pass through here
package query

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// EscapeLiteral escapes backslashes and single quotes for use inside a
// quoted SOQL string compared with = or !=.
func EscapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// SanitizePattern prepares a value for a LIKE clause. Backslash, quote and the
// wildcard characters are escaped, in that order, and the result is trimmed.
func SanitizePattern(s string) string {
	s = EscapeLiteral(s)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return strings.TrimSpace(s)
}

// Quote returns an escaped, single-quoted literal.
func Quote(s string) string {
	return "'" + EscapeLiteral(s) + "'"
}

// ParseDate validates a YYYY-MM-DD date so it can be embedded unquoted.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return t.Format(DateLayout), nil
}
