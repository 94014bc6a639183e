package internal

import (
	"context"
	"maps"
	"time"
)

// LatestRatesResponse is the exchangerate-api.com v4 payload.
type LatestRatesResponse struct {
	Base            string             `json:"base"`
	Date            Date               `json:"date"`
	TimeLastUpdated int64              `json:"time_last_updated"`
	Rates           map[string]float64 `json:"rates"`
}

// RateSet is a validated-for-shape set of rates against Base, ready to be
// handed to RateTable.Replace.
type RateSet struct {
	Base      CurrencyCode
	AsOf      Date
	UpdatedAt time.Time
	Rates     map[CurrencyCode]float64
}

type RatesSource interface {
	FetchRates(ctx context.Context, base CurrencyCode) (RateSet, error)
}

// fallbackUSD are demo rates installed when the provider is unreachable.
var fallbackUSD = map[CurrencyCode]float64{
	EUR: 0.85,
	GBP: 0.73,
	JPY: 110.0,
	CAD: 1.25,
	AUD: 1.35,
	CHF: 0.92,
}

// FallbackRates returns the built-in demo rate set. The figures are quoted
// against USD and re-expressed against base when base is one of them.
func FallbackRates(base CurrencyCode) RateSet {
	if base == USD {
		return RateSet{Base: USD, Rates: maps.Clone(fallbackUSD)}
	}

	usdTable, _ := NewRateTableWith(USD, fallbackUSD)
	snap := usdTable.Snapshot()
	if !snap.Has(base) {
		// no figures for this base, keep the table quoted against USD
		return RateSet{Base: USD, Rates: maps.Clone(fallbackUSD)}
	}

	out := make(map[CurrencyCode]float64, len(fallbackUSD))
	for _, code := range snap.Codes() {
		if code == base {
			continue
		}
		r, _ := snap.RateBetween(base, code)
		out[code] = r
	}
	return RateSet{Base: base, Rates: out}
}
