package normalize

import "strings"

// RegionCity extracts the city from a "City, Region" locality string.
func RegionCity(region string) string {
	if i := strings.Index(region, ","); i >= 0 {
		region = region[:i]
	}
	return strings.TrimSpace(region)
}

// City returns the comparison form of a city name: lower case with
// whitespace trimmed and collapsed. An empty input stays empty.
func City(raw string) string {
	c := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if c == "" {
		return ""
	}
	return expandCity(c)
}
