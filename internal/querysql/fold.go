package querysql

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoldFunc is the SQL function the store registers to apply Fold inside
// queries.
const FoldFunc = "casefold"

// Fold normalizes s to NFC and applies Unicode case folding, so "CAFÉ",
// "café" and "café" all fold to the same string.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so s matches literally with
// ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
