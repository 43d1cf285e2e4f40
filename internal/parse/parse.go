// Package parse holds the pure numeric/text extraction helpers shared by
// the payload normalizers.
package parse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// soldPattern matches the first decimal number in a localized sold-count
// string, with an optional Indonesian magnitude suffix: RB (ribu,
// thousand) or JT (juta, million). Comma is accepted as the decimal
// separator, e.g. "1,5JT terjual".
var soldPattern = regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)?)\s*(RB|JT)?`)

// SoldCount parses a human-readable sold-count string into units sold.
//
//	"10RB+ terjual" -> 10000
//	"1,5JT terjual" -> 1500000
//	"250 terjual"   -> 250
//	"terjual", ""   -> 0
//
// Unparseable input yields 0; the function never fails.
func SoldCount(text string) int64 {
	m := soldPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}

	switch strings.ToUpper(m[2]) {
	case "RB":
		n *= 1_000
	case "JT":
		n *= 1_000_000
	}

	return int64(math.Round(n))
}

// RescalePrice normalizes a price that may still be in the site's
// internal fixed-point unit. Some endpoints report prices multiplied by
// 100000 while others report them plain; no endpoint flag distinguishes
// the two, so any value above 1000000 is assumed scaled and divided
// down. This is a documented approximation: a genuine plain price above
// one million would be rescaled too.
func RescalePrice(v float64) float64 {
	if v > 1_000_000 {
		return v / 100_000
	}
	return v
}
