package loader

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	headerReplacer = strings.NewReplacer(" ", "_", ".", "_", "/", "_")
	currencyNoise  = regexp.MustCompile(`[a-z$€£]+`)
	numberSpacing  = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "\u202f", "", "\t", "")
)

// Normalize folds a header or cell for keyword comparison: lower-cased,
// trimmed, with spaces, periods and slashes turned into underscores.
// Never use it on display values.
func Normalize(v any) string {
	s := strings.ToLower(strings.TrimSpace(toString(v)))
	return headerReplacer.Replace(s)
}

// CleanCurrency coerces a money-like value to a float. Numbers pass through
// unchanged. Strings lose currency symbols, letters, thousands separators and
// whitespace before parsing. Anything unparseable, negative or non-finite in
// text form becomes 0.
func CleanCurrency(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case string:
		return parseMoney(n)
	default:
		return parseMoney(fmt.Sprint(v))
	}
}

func parseMoney(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	s = currencyNoise.ReplaceAllString(s, "")
	s = numberSpacing.Replace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// isMissing reports whether a raw cell should be treated as absent.
func isMissing(cell string) bool {
	return strings.TrimSpace(cell) == ""
}
