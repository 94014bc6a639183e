package internal

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCurrency = errors.New("invalid currency code")

type CurrencyCode string

func NewCurrencyCode(s string) (CurrencyCode, error) {
	ccy := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !ccy.IsValid() {
		return "", fmt.Errorf("%w %q", ErrInvalidCurrency, s)
	}
	return ccy, nil
}

const (
	USD CurrencyCode = "USD"
	EUR CurrencyCode = "EUR"
	GBP CurrencyCode = "GBP"
	JPY CurrencyCode = "JPY"
	CAD CurrencyCode = "CAD"
	AUD CurrencyCode = "AUD"
	CHF CurrencyCode = "CHF"
)

// IsValid reports whether c looks like an ISO 4217 code. Whether the code
// has a known rate is up to the RateTable.
func (c CurrencyCode) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func (c CurrencyCode) String() string { return string(c) }

func (c CurrencyCode) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", c.String())), nil
}

func (c *CurrencyCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := strings.Trim(string(b), "\"")
	ccy, err := NewCurrencyCode(s)
	if err != nil {
		return err
	}
	*c = ccy
	return nil
}

// Pair is an ordered from/to couple of currencies.
type Pair struct {
	From CurrencyCode `json:"from"`
	To   CurrencyCode `json:"to"`
}

// ParsePair accepts "USD/EUR".
func ParsePair(s string) (Pair, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Pair{}, fmt.Errorf("pair %q: expected FROM/TO", s)
	}
	f, err := NewCurrencyCode(from)
	if err != nil {
		return Pair{}, fmt.Errorf("pair %q: %w", s, err)
	}
	t, err := NewCurrencyCode(to)
	if err != nil {
		return Pair{}, fmt.Errorf("pair %q: %w", s, err)
	}
	return Pair{From: f, To: t}, nil
}

func (p Pair) String() string { return string(p.From) + "/" + string(p.To) }

func (p Pair) Swapped() Pair { return Pair{From: p.To, To: p.From} }
