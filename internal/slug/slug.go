// Package slug derives URL-safe path segments from arbitrary strings.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Make lowercases s, folds accented characters to their ASCII base, and
// replaces everything else with single hyphens.
func Make(s string) string {
	decomposed := norm.NFKD.String(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining mark left over from decomposition.
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
