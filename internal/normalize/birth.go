package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBirthYearOffset is the assumed age at the start of a degree.
const DefaultBirthYearOffset = 17

var reLeadingYear = regexp.MustCompile(`^(\d{4})(?:\D|$)`)

// ParseYear reads a year from a date field. Both bare years ("1984") and
// dates that start with the year ("1984-09-01") are accepted. An empty
// field yields nil without error.
func ParseYear(field string) (*int, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}

	if m := reLeadingYear.FindStringSubmatch(field); m != nil {
		y, _ := strconv.Atoi(m[1])
		return &y, nil
	}

	y, err := strconv.Atoi(field)
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", field)
	}
	return &y, nil
}

// EstimateBirthYear derives a birth year from a milestone date field by
// subtracting offset years. A missing field yields nil.
func EstimateBirthYear(field string, offset int) (*int, error) {
	y, err := ParseYear(field)
	if err != nil || y == nil {
		return nil, err
	}
	est := *y - offset
	return &est, nil
}
