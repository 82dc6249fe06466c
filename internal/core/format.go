package core

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DisplayCurrency is the single currency amounts are shown in.
const DisplayCurrency = money.USD

// FormatCurrency renders n as a dollar amount with thousands separators and
// two decimals, e.g. "$1,234.56". NaN and infinities render as "$0.00".
func FormatCurrency(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	cents := decimal.NewFromFloat(n).Round(2).Shift(2)
	if cents.Abs().GreaterThan(maxCents) {
		return formatLargeCurrency(cents.Shift(-2))
	}
	return money.New(cents.IntPart(), DisplayCurrency).Display()
}

// maxCents is the largest amount money.Money can hold, in cents.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// formatLargeCurrency renders amounts beyond int64 cents in the same layout
// as money.Display.
func formatLargeCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign, d = "-", d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// FormatCurrencyPtr is FormatCurrency for optional amounts; nil renders as "$0.00".
func FormatCurrencyPtr(n *float64) string {
	if n == nil {
		return FormatCurrency(0)
	}
	return FormatCurrency(*n)
}

// FormatPercent renders n with one decimal and a percent sign, e.g. "80.0%".
// NaN and infinities render as "0.0%".
func FormatPercent(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	return decimal.NewFromFloat(n).StringFixed(1) + "%"
}
