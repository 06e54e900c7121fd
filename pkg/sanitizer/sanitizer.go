// Package sanitizer normalizes free-text fields before they reach validation
// and storage. Booking titles arrive from upstream clients already parsed but
// not necessarily clean.
package sanitizer

import (
	"strings"
	"unicode"
)

const maxTitleLength = 100

// TrimAndNormalize trims the string and collapses interior whitespace runs
// into single spaces, dropping control characters.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			// dropped
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// SanitizeTitle normalizes a booking title and truncates it to the maximum
// stored length at a rune boundary.
func SanitizeTitle(title string) string {
	title = TrimAndNormalize(title)
	runes := []rune(title)
	if len(runes) > maxTitleLength {
		title = strings.TrimSpace(string(runes[:maxTitleLength]))
	}
	return title
}
