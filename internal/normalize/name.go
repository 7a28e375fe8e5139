package normalize

import (
	"regexp"
	"strings"
)

// Anything that is not a letter, digit, underscore, whitespace or hyphen.
var reNamePunct = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// CanonicalName joins first and last name parts into the matching key.
// Text after the first comma is dropped (credentials, "Jr", "PhD"),
// punctuation is removed except hyphens inside a word, and whitespace is
// trimmed and collapsed. Case is preserved.
func CanonicalName(first, last string) string {
	full := strings.TrimSpace(first + " " + last)
	if i := strings.Index(full, ","); i >= 0 {
		full = full[:i]
	}
	full = reNamePunct.ReplaceAllString(full, "")

	tokens := strings.Fields(full)
	out := tokens[:0]
	for _, tok := range tokens {
		tok = strings.Trim(tok, "-")
		if tok != "" {
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}
