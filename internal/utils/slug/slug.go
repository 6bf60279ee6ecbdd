// Package slug normalizes human-readable names into URL-safe slugs.
// The slug is the de-duplication key for taxonomy terms: two names that
// normalize to the same slug must resolve to the same term.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes characters and drops combining marks, so
// "Volkswagen Jetta Edición" and "Volkswagen Jetta Edicion" collide.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts a name into a lowercase, URL-safe slug: accents are
// stripped, runs of non-alphanumeric characters collapse to a single
// hyphen, and leading/trailing hyphens are removed.
func Make(name string) string {
	folded, _, err := transform.String(stripAccents, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))

	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// Filename sanitizes a title for use as an upload filename, keeping
// alphanumerics, hyphens, underscores and dots.
func Filename(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
