package utils

import (
	"regexp"
	"strings"

	"github.com/inpred/sadet/internal/ui"
)

// prefixRegex limits output file prefixes to characters that are safe in
// file names on every filesystem SADET runs on.
var prefixRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsValidOutputPrefix checks whether an output file prefix contains only
// alphanumeric characters and underscores.
func IsValidOutputPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	return prefixRegex.MatchString(prefix)
}

// ForbiddenPrefixChars returns the characters of prefix that are not allowed
// in an output file prefix, for use in error messages.
func ForbiddenPrefixChars(prefix string) string {
	allowed := regexp.MustCompile(`[a-zA-Z0-9_]+`)
	return allowed.ReplaceAllString(prefix, "")
}
