// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and formatting cents for the supported locales.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	LocalePtBR = "pt-BR"
	LocaleEnUS = "en-US"
	LocaleItIT = "it-IT"
)

type numberFormat struct {
	prefix    string
	thousands string
	decimal   string
}

var numberFormats = map[string]numberFormat{
	LocalePtBR: {prefix: "R$ ", thousands: ".", decimal: ","},
	LocaleEnUS: {prefix: "$", thousands: ",", decimal: "."},
	LocaleItIT: {prefix: "€ ", thousands: ".", decimal: ","},
}

// groupedAmount matches an integer written with thousands separators only,
// like 1.234 or 1,234,567.
var groupedAmount = regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)

// ParseAmount parses s like ParseDecimalToCents, except that a string whose
// only separator is the locale's thousands separator in groups of three is
// read as a whole amount: "1.234" is 123400 cents in pt-BR and 123 in en-US.
func ParseAmount(s, locale string) (int64, error) {
	nf, ok := numberFormats[locale]
	if !ok {
		nf = numberFormats[LocalePtBR]
	}
	trimmed := strings.TrimSpace(s)
	for _, p := range []string{"R$", "$", "€"} {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, p))
	}
	if groupedAmount.MatchString(trimmed) && !strings.Contains(trimmed, nf.decimal) {
		s = strings.ReplaceAll(trimmed, nf.thousands, "")
	}
	return ParseDecimalToCents(s)
}

// ParseDecimalToCents converts a decimal string to cents with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional currency prefix ("R$ 12,34"). A string carrying both separators is
// read the pt-BR way when the comma comes last ("1.234,56") and the en-US way
// otherwise ("1,234.56"). A single separator is always the decimal one, so
// "1.234" is 123 cents; use ParseAmount when the locale is known. Negative
// values are rejected; zero is allowed.
//
// Examples:
//
//	ParseDecimalToCents("12.34")    -> 1234, nil
//	ParseDecimalToCents("12,34")    -> 1234, nil
//	ParseDecimalToCents("12.345")   -> 1235, nil (half-up)
//	ParseDecimalToCents("1.234,56") -> 123456, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	for _, p := range []string{"R$", "$", "€"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, p))
	}
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.ContainsAny(s, ",eE") {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// FormatMoney renders m for the given locale. Unknown locales fall back to pt-BR.
func FormatMoney(m Money, locale string) string {
	nf, ok := numberFormats[locale]
	if !ok {
		nf = numberFormats[LocalePtBR]
	}

	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	fixed := decimal.New(cents, -2).StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(nf.thousands)
		}
		b.WriteRune(r)
	}
	return sign + nf.prefix + b.String() + nf.decimal + fracPart
}

// SupportedLocale reports whether FormatMoney knows locale.
func SupportedLocale(locale string) bool {
	_, ok := numberFormats[locale]
	return ok
}
