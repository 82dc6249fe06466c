package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a dollar amount as typed by a user. A leading sign, a
// "$" and thousands separators are accepted ("-$1,234.56"). The value is
// rounded half away from zero to whole cents.
//
// Examples:
//
//	ParseAmount("2500")      -> 2500
//	ParseAmount("$1,234.5")  -> 1234.50
//	ParseAmount("-50")       -> -50
//	ParseAmount("12.345")    -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidNumber
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || strings.ContainsAny(s, "+-eE \t") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, sign+s)
	}
	d, err := decimal.NewFromString(sign + s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, sign+s)
	}
	return d.Round(2), nil
}

// ParseOptionalAmount parses a non-negative amount. Blank input yields
// (zero, false, nil).
func ParseOptionalAmount(s string) (d decimal.Decimal, set bool, err error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, false, nil
	}
	d, err = ParseAmount(s)
	if err != nil {
		return decimal.Zero, false, err
	}
	if d.IsNegative() {
		return decimal.Zero, false, ErrNegativeValue
	}
	return d, true, nil
}

// FormatAmount renders a stored amount back into editable form without
// currency symbol or separators, e.g. 1234.5 -> "1234.5".
func FormatAmount(n float64) string {
	return decimal.NewFromFloat(n).String()
}
