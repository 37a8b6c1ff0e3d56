package sitehooks

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode"
)

// Slugify converts a title or file name to a slug. Letters and digits of any
// script are kept; PathEscape makes the result URL-safe.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// slugFromFile derives a slug from a markdown file name, dropping the
// extension.
func slugFromFile(name string) string {
	base := filepath.Base(name)
	return Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}
