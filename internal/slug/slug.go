// Package slug derives URL-safe identifiers from titles.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a title has no ASCII letters or digits.
const Fallback = "article"

// MaxLen bounds the length of a generated slug, suffix excluded.
const MaxLen = 200

// Make lowercases s, strips accents and replaces every run of characters
// outside [a-z0-9] with a single hyphen.
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		case b.Len() > 0 && !hyphen:
			b.WriteByte('-')
			hyphen = true
		}
	}

	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > MaxLen {
		out = strings.TrimSuffix(out[:MaxLen], "-")
	}
	if out == "" {
		return Fallback
	}

	return out
}
