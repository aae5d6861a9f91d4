package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseFloat parses a numeric cell as found in published statistics:
// surrounding whitespace and thousands separators are ignored.
// Returns an error for empty, malformed or non-finite input.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return f, nil
}

// ParseWholeNumber parses an integer that may be written with a zero
// fractional part, e.g. "2010" or "2010.0".
func ParseWholeNumber(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, nil
	}

	f, err := ParseFloat(trimmed)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not a whole number %q", trimmed)
	}
	return int(f), nil
}
