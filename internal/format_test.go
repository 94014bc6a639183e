package internal_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"service-converter/internal"
)

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:            "0.00",
		85:           "85.00",
		117.64705882: "117.65",
		1234.5:       "1,234.50",
		1234567.891:  "1,234,567.89",
		0.005:        "0.01",
	}
	for in, want := range cases {
		assert.Equal(t, want, internal.FormatAmount(in), "input %v", in)
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0.8500", internal.FormatRate(0.85))
	assert.Equal(t, "150.6849", internal.FormatRate(110.0/0.73))
	assert.Equal(t, "11,000.0000", internal.FormatRate(11000))
	assert.Equal(t, "0.0000", internal.FormatRate(math.NaN()))
}

func TestRateLine(t *testing.T) {
	assert.Equal(t, "1 USD = 0.8500 EUR", internal.RateLine(internal.USD, internal.EUR, 0.85))
}
