//go:build !libpostal

package normalize

// CityExpansion names the city expansion backend compiled in.
const CityExpansion = "plain"

func expandCity(c string) string {
	return c
}
