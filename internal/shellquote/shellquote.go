// Package shellquote quotes strings for POSIX shell command lines.
package shellquote

import "strings"

// Quote wraps s in single quotes, escaping any internal single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteJoin quotes every token and joins them with spaces. Used to
// forward unmatched trailing tokens to a non-strict command without the
// shell re-splitting them.
func QuoteJoin(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = Quote(tok)
	}
	return strings.Join(quoted, " ")
}
