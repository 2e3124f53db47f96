package dialect

import (
	"strconv"
	"strings"
)

// DefaultGetSchemaName is a default implementation for Getting Schema Name (identity).
func DefaultGetSchemaName(input string) string {
	return input
}

// quoteWith wraps name in the given delimiters, doubling any closing
// delimiter found inside it.
func quoteWith(name, open, end string) string {
	return open + strings.ReplaceAll(name, end, end+end) + end
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
