package dose

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNumber converts a raw numeric field from simulation output to a
// float64. The tool's output varies with the host locale (comma vs point
// decimal separator) and with magnitude (scientific notation or plain), so
// the field is normalized before conversion:
//
//  1. surrounding whitespace is trimmed
//  2. decimal commas become points
//  3. any character outside [0-9 . + - e E] is dropped
//
// An empty or unconvertible field returns an error; callers record a
// diagnostic and exclude the cell rather than aborting the line.
func ParseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", ".")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '+', r == '-', r == 'e', r == 'E':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("numeric field %q is empty after normalization", raw)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("numeric field %q: %w", raw, err)
	}
	return v, nil
}
