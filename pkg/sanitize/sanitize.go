// Package sanitize strips the characters that let free text be read back as markup.
//
// This is a minimal XSS character strip, not an HTML sanitizer: only '<' and
// '>' are removed, so "<script>" becomes "script".
package sanitize

import (
	"errors"
	"strings"
)

// ErrInvalidInput marks a free-text field that arrived as something other
// than a string.
var ErrInvalidInput = errors.New("invalid input")

var brackets = strings.NewReplacer("<", "", ">", "")

// String removes every '<' and '>' and trims surrounding whitespace.
// Brackets go first so whitespace they were hiding is trimmed too,
// which keeps String(String(s)) == String(s).
func String(input string) string {
	return strings.TrimSpace(brackets.Replace(input))
}
