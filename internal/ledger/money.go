package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Amount is a monetary value in integer minor units (cents). All ledger
// arithmetic happens on Amount so prefix sums are exact; floating-point
// money is never used.
type Amount int64

// String formats the amount as a decimal string with two fraction digits,
// e.g. 12345 -> "123.45", -50 -> "-0.50".
func (a Amount) String() string {
	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}

// ParseAmount parses a decimal string ("120", "120.5", "120.50") into minor
// units. More than two fraction digits is an error, not a rounding.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two fraction digits", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	v := units*100 + cents
	if neg {
		v = -v
	}
	return Amount(v), nil
}
