package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims the input, drops control characters and caps the
// result at maxLen runes. A non-positive maxLen disables the cap.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	kept := 0
	for _, r := range strings.TrimSpace(input) {
		if unicode.IsControl(r) {
			continue
		}
		if maxLen > 0 && kept == maxLen {
			break
		}
		b.WriteRune(r)
		kept++
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}
