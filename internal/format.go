package internal

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	AmountDecimals = 2
	RateDecimals   = 4
)

var displayPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatFixed renders v with en-US digit grouping and exactly places
// fractional digits, rounding half away from zero.
func FormatFixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0." + zeros(places)
	}
	rounded := decimal.NewFromFloat(v).Round(places).InexactFloat64()
	return displayPrinter.Sprint(number.Decimal(rounded, number.Scale(int(places))))
}

func FormatAmount(v float64) string { return FormatFixed(v, AmountDecimals) }

func FormatRate(v float64) string { return FormatFixed(v, RateDecimals) }

// RateLine is the "1 USD = 0.8500 EUR" caption.
func RateLine(from, to CurrencyCode, rate float64) string {
	return fmt.Sprintf("1 %s = %s %s", from, FormatRate(rate), to)
}

func zeros(n int32) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}
