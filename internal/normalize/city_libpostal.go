//go:build libpostal

package normalize

import (
	"strings"

	expand "github.com/openvenues/gopostal/expand"
)

// CityExpansion names the city expansion backend compiled in.
const CityExpansion = "libpostal"

// expandCity maps abbreviations ("st louis", "ft worth") onto libpostal's
// first canonical expansion so both sides compare in the same form.
func expandCity(c string) string {
	expansions := expand.ExpandAddress(c)
	if len(expansions) == 0 {
		return c
	}
	return strings.Join(strings.Fields(strings.ToLower(expansions[0])), " ")
}
