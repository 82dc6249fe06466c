package core

import (
	"math"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{2500, "$2,500.00"},
		{1234.56, "$1,234.56"},
		{1234567.891, "$1,234,567.89"},
		{0.5, "$0.50"},
		{-50, "-$50.00"},
		{9e15, "$9,000,000,000,000,000.00"},
		{1e17, "$100,000,000,000,000,000.00"},
		{1e19, "$10,000,000,000,000,000,000.00"},
		{-1e17, "-$100,000,000,000,000,000.00"},
		{math.NaN(), "$0.00"},
		{math.Inf(1), "$0.00"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := FormatCurrencyPtr(nil); got != "$0.00" {
		t.Fatalf("nil = %q", got)
	}
	v := 75.0
	if got := FormatCurrencyPtr(&v); got != "$75.00" {
		t.Fatalf("ptr = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{80, "80.0%"},
		{0, "0.0%"},
		{33.333, "33.3%"},
		{999.9, "999.9%"},
		{math.NaN(), "0.0%"},
	}
	for _, tc := range cases {
		if got := FormatPercent(tc.in); got != tc.want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
