package provider

import (
	"regexp"
	"strconv"
	"strings"
)

// ExtractValue normalizes a numeric value from various API response formats.
//
// Ergast returns numbers as JSON strings ("155", "12.5"). Scraped pages hand
// over cell text. This handles both.
//
// Returns the scalar float64 value, and ok=false if not extractable.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return parseLeadingFloat(v)
	case map[string]interface{}:
		for _, key := range []string{"total", "value", "count"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?\d+(\.\d+)?`)
	footnote     = regexp.MustCompile(`\[[^\]]*\]`)
	innerSpace   = regexp.MustCompile(`\s+`)
)

// CleanText trims the text of a scraped cell, drops footnote markers like
// "[a]" and collapses inner whitespace.
func CleanText(s string) string {
	s = footnote.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = innerSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ParseInt reads the leading integer of s ("12", "12 pts", "3‡").
// Returns ok=false when s does not start with a number.
func ParseInt(s string) (int, bool) {
	m := leadingInt.FindString(CleanText(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IntOr returns the leading integer of s, or fallback.
func IntOr(s string, fallback int) int {
	if n, ok := ParseInt(s); ok {
		return n
	}
	return fallback
}

// NonNegative clamps negative coerced values to zero.
func NonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// OptionalInt returns a pointer to the leading positive integer of s, or nil
// when absent. Used for fields that are omitted rather than defaulted.
func OptionalInt(s string) *int {
	n, ok := ParseInt(s)
	if !ok || n <= 0 {
		return nil
	}
	return &n
}

func parseLeadingFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(CleanText(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
