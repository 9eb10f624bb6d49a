package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxSearchTextChars caps the free text stored on a candidate.
const MaxSearchTextChars = 50000

// IsBlank reports whether s has no non-whitespace characters.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// TruncateChars cuts s to at most limit characters (runes, not bytes).
func TruncateChars(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
