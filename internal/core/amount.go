package core

// amount.go coerces the free-text amount column into numbers.
//
// Stored amounts come from people typing into a form and from spreadsheet
// exports, so they carry currency symbols, spaces and decimal commas. The
// coercion is total: anything unusable reads as zero rather than failing a
// report.

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CoerceAmount converts raw to a float64, returning 0 when nothing usable
// remains after cleanup.
func CoerceAmount(raw string) float64 {
	return CoerceDecimal(raw).InexactFloat64()
}

// CoerceDecimal is CoerceAmount with exact decimal arithmetic preserved.
//
// A direct parse is tried first. Otherwise every ',' becomes '.', everything
// but digits, '.' and '-' is dropped, and the result is parsed again.
func CoerceDecimal(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}

	s = strings.ReplaceAll(s, ",", ".")
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return decimal.Zero
	}

	// "1.234.00" from "1.234,00": only the last separator is the decimal point.
	if n := strings.Count(cleaned, "."); n > 1 {
		cleaned = strings.Replace(cleaned, ".", "", n-1)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
