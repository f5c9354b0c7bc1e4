// Package slug turns post titles into URL-safe identifiers.
package slug

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const maxLen = 80

// Make lowercases s, strips accents and joins runs of letters and digits with '-'.
// An empty result falls back to "post".
func Make(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxLen {
			break
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	if out == "" {
		return "post"
	}
	return out
}

// WithSuffix appends a short random suffix, used when a slug is already taken.
func WithSuffix(s string) string {
	return s + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
