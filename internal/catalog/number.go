package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var leadingFloat = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseLeadingFloat parses the longest numeric prefix of s after leading
// whitespace, so "12.5kg" yields 12.5 and "abc" fails.
func ParseLeadingFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	switch strings.TrimLeft(m, "+-") {
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Out of range literals still carry a sign and magnitude.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// FormatNumber renders f the way a browser stringifies a number: plain
// decimals between 1e-6 and 1e21, exponent form outside that range. Both
// zeros print as "0".
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}

	if f == 0 {
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}
