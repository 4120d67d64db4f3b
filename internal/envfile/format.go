package envfile

import (
	"strings"
	"unicode"
)

var valueEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// FormatValue renders value for the right-hand side of KEY=VALUE. Values
// containing whitespace or '#' are double-quoted and escaped; everything
// else is written as is.
func FormatValue(value string) string {
	if value == "" {
		return ""
	}
	if !needsQuoting(value) {
		return value
	}
	return `"` + valueEscaper.Replace(value) + `"`
}

func needsQuoting(value string) bool {
	return strings.ContainsFunc(value, func(r rune) bool {
		return r == '#' || unicode.IsSpace(r)
	})
}
