package internal

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync/atomic"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidRateSet = errors.New("invalid rate set")
)

// MissingRateError lists codes a conversion had to treat as 1:1 with the base.
type MissingRateError struct {
	Base  CurrencyCode
	Codes []CurrencyCode
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no rate against %s for %v", e.Base, e.Codes)
}

// RateTable holds rates relative to a single base currency:
// 1 unit of base equals Rates[code] units of code.
// The zero value is not usable, see NewRateTable.
type RateTable struct {
	snap atomic.Pointer[RateSnapshot]
}

// RateSnapshot is one immutable generation of the table.
type RateSnapshot struct {
	base    CurrencyCode
	rates   map[CurrencyCode]float64
	version uint64
}

func NewRateTable(base CurrencyCode) *RateTable {
	t := &RateTable{}
	t.snap.Store(&RateSnapshot{base: base, rates: map[CurrencyCode]float64{}})
	return t
}

// NewRateTableWith builds a table already holding rates.
func NewRateTableWith(base CurrencyCode, rates map[CurrencyCode]float64) (*RateTable, error) {
	t := NewRateTable(base)
	if err := t.Replace(base, rates); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *RateTable) Snapshot() *RateSnapshot { return t.snap.Load() }

func (t *RateTable) Base() CurrencyCode { return t.Snapshot().base }

func (t *RateTable) Rates() map[CurrencyCode]float64 { return t.Snapshot().Rates() }

func (t *RateTable) Has(code CurrencyCode) bool { return t.Snapshot().Has(code) }

func (t *RateTable) Version() uint64 { return t.Snapshot().version }

func (t *RateTable) RequireRates(codes ...CurrencyCode) error {
	return t.Snapshot().RequireRates(codes...)
}

func (t *RateTable) Convert(amount float64, from, to CurrencyCode) (float64, error) {
	return t.Snapshot().Convert(amount, from, to)
}

func (t *RateTable) RateBetween(from, to CurrencyCode) (float64, error) {
	return t.Snapshot().RateBetween(from, to)
}

func (t *RateTable) Quote(amount float64, from, to CurrencyCode) (Quote, error) {
	return t.Snapshot().Quote(amount, from, to)
}

// Replace swaps the whole table. On error the current contents stay in place.
func (t *RateTable) Replace(base CurrencyCode, rates map[CurrencyCode]float64) error {
	_, err := t.replace(base, rates, 0, false)
	return err
}

// ReplaceIfNewer swaps the table only when version is greater than the
// version of the current snapshot. It reports whether the swap happened.
func (t *RateTable) ReplaceIfNewer(version uint64, base CurrencyCode, rates map[CurrencyCode]float64) (bool, error) {
	return t.replace(base, rates, version, true)
}

// ReplaceAtVersion swaps the table only while its version still equals
// version, and keeps that version. A later ReplaceIfNewer with any higher
// version can still replace what it installs.
func (t *RateTable) ReplaceAtVersion(version uint64, base CurrencyCode, rates map[CurrencyCode]float64) (bool, error) {
	next, err := newSnapshot(base, rates)
	if err != nil {
		return false, err
	}
	next.version = version
	for {
		cur := t.snap.Load()
		if cur.version != version {
			return false, nil
		}
		if t.snap.CompareAndSwap(cur, next) {
			return true, nil
		}
	}
}

func (t *RateTable) replace(base CurrencyCode, rates map[CurrencyCode]float64, version uint64, guarded bool) (bool, error) {
	next, err := newSnapshot(base, rates)
	if err != nil {
		return false, err
	}

	for {
		cur := t.snap.Load()
		if guarded && version <= cur.version {
			return false, nil
		}
		next.version = cur.version
		if guarded {
			next.version = version
		}
		if t.snap.CompareAndSwap(cur, next) {
			return true, nil
		}
	}
}

func newSnapshot(base CurrencyCode, rates map[CurrencyCode]float64) (*RateSnapshot, error) {
	if err := ValidateRates(base, rates); err != nil {
		return nil, err
	}
	next := &RateSnapshot{base: base, rates: maps.Clone(rates)}
	if next.rates == nil {
		next.rates = map[CurrencyCode]float64{}
	}
	return next, nil
}

// ValidateRates checks a proposed replacement without touching any table.
func ValidateRates(base CurrencyCode, rates map[CurrencyCode]float64) error {
	if !base.IsValid() {
		return fmt.Errorf("%w: base %q", ErrInvalidRateSet, base)
	}
	for code, rate := range rates {
		if !code.IsValid() {
			return fmt.Errorf("%w: code %q", ErrInvalidRateSet, code)
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return fmt.Errorf("%w: %s/%s=%v", ErrInvalidRateSet, base, code, rate)
		}
	}
	return nil
}

func (s *RateSnapshot) Base() CurrencyCode { return s.base }

func (s *RateSnapshot) Version() uint64 { return s.version }

func (s *RateSnapshot) Rates() map[CurrencyCode]float64 { return maps.Clone(s.rates) }

// Codes returns every code the snapshot can price, base included, sorted.
func (s *RateSnapshot) Codes() []CurrencyCode {
	codes := make([]CurrencyCode, 0, len(s.rates)+1)
	codes = append(codes, s.base)
	for c := range s.rates {
		if c != s.base {
			codes = append(codes, c)
		}
	}
	slices.Sort(codes)
	return codes
}

func (s *RateSnapshot) Has(code CurrencyCode) bool {
	if code == s.base {
		return true
	}
	_, ok := s.rates[code]
	return ok
}

// RequireRates returns a *MissingRateError naming every code the snapshot
// cannot price. Callers that must not degrade to 1:1 check it first.
func (s *RateSnapshot) RequireRates(codes ...CurrencyCode) error {
	var missing []CurrencyCode
	for _, c := range codes {
		if !s.Has(c) && !slices.Contains(missing, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingRateError{Base: s.base, Codes: missing}
}

func (s *RateSnapshot) Convert(amount float64, from, to CurrencyCode) (float64, error) {
	q, err := s.Quote(amount, from, to)
	if err != nil {
		return 0, err
	}
	return q.Result, nil
}

func (s *RateSnapshot) RateBetween(from, to CurrencyCode) (float64, error) {
	if from == to {
		return 1, nil
	}
	return s.Convert(1, from, to)
}

// Quote is a conversion result together with the codes that had no rate
// and were priced 1:1 against the base.
type Quote struct {
	Amount  float64        `json:"amount"`
	From    CurrencyCode   `json:"from"`
	To      CurrencyCode   `json:"to"`
	Result  float64        `json:"result"`
	Base    CurrencyCode   `json:"base"`
	Version uint64         `json:"version"`
	Missing []CurrencyCode `json:"missing_rates,omitempty"`
}

func (q Quote) Degraded() bool { return len(q.Missing) > 0 }

// MissingRates returns a *MissingRateError when the quote used a default rate.
func (q Quote) MissingRates() error {
	if !q.Degraded() {
		return nil
	}
	return &MissingRateError{Base: q.Base, Codes: slices.Clone(q.Missing)}
}

func (s *RateSnapshot) Quote(amount float64, from, to CurrencyCode) (Quote, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return Quote{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	q := Quote{Amount: amount, From: from, To: to, Base: s.base, Version: s.version}
	switch {
	case from == to:
		q.Result = amount
	case from == s.base:
		q.Result = amount * s.rate(to, &q)
	case to == s.base:
		q.Result = amount / s.rate(from, &q)
	default:
		// through the base: from -> base -> to
		inBase := amount / s.rate(from, &q)
		q.Result = inBase * s.rate(to, &q)
	}
	return q, nil
}

func (s *RateSnapshot) rate(code CurrencyCode, q *Quote) float64 {
	if r, ok := s.rates[code]; ok {
		return r
	}
	q.Missing = append(q.Missing, code)
	return 1
}
