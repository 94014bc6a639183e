package internal

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrConverterNotFound = errors.New("converter not found")
	ErrTooManyConverters = errors.New("too many converters")
)

// DefaultMaxConverters bounds the mini converter registry when no limit is
// configured.
const DefaultMaxConverters = 50

var DefaultPopularPairs = []Pair{
	{From: USD, To: EUR},
	{From: USD, To: GBP},
	{From: USD, To: JPY},
	{From: USD, To: CAD},
	{From: EUR, To: GBP},
	{From: GBP, To: JPY},
}

// defaultConverterPairs rotate as mini converters are added.
var defaultConverterPairs = []Pair{
	{From: USD, To: EUR},
	{From: GBP, To: USD},
	{From: JPY, To: USD},
	{From: CAD, To: USD},
	{From: AUD, To: USD},
}

type ConversionView struct {
	Amount       float64        `json:"amount"`
	From         CurrencyCode   `json:"from"`
	To           CurrencyCode   `json:"to"`
	Result       float64        `json:"result"`
	Rate         float64        `json:"rate"`
	ResultText   string         `json:"result_text"`
	RateText     string         `json:"rate_text"`
	MissingRates []CurrencyCode `json:"missing_rates,omitempty"`
}

type PairRate struct {
	Pair
	Rate         float64        `json:"rate"`
	RateText     string         `json:"rate_text"`
	MissingRates []CurrencyCode `json:"missing_rates,omitempty"`
}

type MiniConverter struct {
	ID int `json:"id"`
	PairRate
	Line string `json:"line"`
}

// Widget is the conversion front: main converter, popular pair board and
// the ad-hoc mini converters, all reading one RateTable.
type Widget struct {
	table   *RateTable
	popular []Pair

	mu            sync.Mutex
	nextID        int
	maxConverters int
	converters    map[int]Pair
}

// NewWidget builds the widget over table. An empty popular list means
// DefaultPopularPairs, maxConverters <= 0 means DefaultMaxConverters.
func NewWidget(table *RateTable, popular []Pair, maxConverters int) *Widget {
	if len(popular) == 0 {
		popular = DefaultPopularPairs
	}
	if maxConverters <= 0 {
		maxConverters = DefaultMaxConverters
	}
	return &Widget{
		table:         table,
		popular:       slices.Clone(popular),
		maxConverters: maxConverters,
		converters:    make(map[int]Pair),
	}
}

// Convert prices amount for the main converter. Result and rate come from
// the same table snapshot.
func (w *Widget) Convert(amount float64, from, to CurrencyCode) (ConversionView, error) {
	return convertView(w.table.Snapshot(), amount, from, to)
}

// ConvertStrict is Convert that fails with a *MissingRateError instead of
// pricing an unknown currency 1:1. An identity conversion needs no rate.
func (w *Widget) ConvertStrict(amount float64, from, to CurrencyCode) (ConversionView, error) {
	snap := w.table.Snapshot()
	if from == to {
		return convertView(snap, amount, from, to)
	}
	if err := snap.RequireRates(from, to); err != nil {
		return ConversionView{}, fmt.Errorf("convert %s->%s: %w", from, to, err)
	}
	return convertView(snap, amount, from, to)
}

func convertView(snap *RateSnapshot, amount float64, from, to CurrencyCode) (ConversionView, error) {
	q, err := snap.Quote(amount, from, to)
	if err != nil {
		return ConversionView{}, fmt.Errorf("convert %s %s->%s: %w", FormatAmount(amount), from, to, err)
	}
	rate, err := snap.RateBetween(from, to)
	if err != nil {
		return ConversionView{}, err
	}

	return ConversionView{
		Amount:       amount,
		From:         from,
		To:           to,
		Result:       q.Result,
		Rate:         rate,
		ResultText:   FormatAmount(q.Result),
		RateText:     RateLine(from, to, rate),
		MissingRates: q.Missing,
	}, nil
}

func (w *Widget) PairRate(p Pair) (PairRate, error) {
	return pairRate(w.table.Snapshot(), p)
}

func pairRate(snap *RateSnapshot, p Pair) (PairRate, error) {
	q, err := snap.Quote(1, p.From, p.To)
	if err != nil {
		return PairRate{}, err
	}
	return PairRate{
		Pair:         p,
		Rate:         q.Result,
		RateText:     FormatRate(q.Result),
		MissingRates: q.Missing,
	}, nil
}

// PopularRates prices every configured popular pair against one snapshot.
func (w *Widget) PopularRates() []PairRate {
	snap := w.table.Snapshot()
	out := make([]PairRate, 0, len(w.popular))
	for _, p := range w.popular {
		pr, err := pairRate(snap, p)
		if err != nil {
			continue
		}
		out = append(out, pr)
	}
	return out
}

func (w *Widget) AddConverter() (MiniConverter, error) {
	w.mu.Lock()
	if len(w.converters) >= w.maxConverters {
		w.mu.Unlock()
		return MiniConverter{}, fmt.Errorf("%w: limit %d", ErrTooManyConverters, w.maxConverters)
	}
	w.nextID++
	id := w.nextID
	p := defaultConverterPairs[(id-1)%len(defaultConverterPairs)]
	w.converters[id] = p
	w.mu.Unlock()

	return w.render(w.table.Snapshot(), id, p), nil
}

func (w *Widget) SetConverterPair(id int, p Pair) (MiniConverter, error) {
	w.mu.Lock()
	if _, ok := w.converters[id]; !ok {
		w.mu.Unlock()
		return MiniConverter{}, fmt.Errorf("%w: %d", ErrConverterNotFound, id)
	}
	w.converters[id] = p
	w.mu.Unlock()

	return w.render(w.table.Snapshot(), id, p), nil
}

func (w *Widget) SwapConverter(id int) (MiniConverter, error) {
	w.mu.Lock()
	p, ok := w.converters[id]
	if !ok {
		w.mu.Unlock()
		return MiniConverter{}, fmt.Errorf("%w: %d", ErrConverterNotFound, id)
	}
	p = p.Swapped()
	w.converters[id] = p
	w.mu.Unlock()

	return w.render(w.table.Snapshot(), id, p), nil
}

func (w *Widget) RemoveConverter(id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.converters[id]; !ok {
		return fmt.Errorf("%w: %d", ErrConverterNotFound, id)
	}
	delete(w.converters, id)
	return nil
}

func (w *Widget) Converter(id int) (MiniConverter, error) {
	w.mu.Lock()
	p, ok := w.converters[id]
	w.mu.Unlock()
	if !ok {
		return MiniConverter{}, fmt.Errorf("%w: %d", ErrConverterNotFound, id)
	}
	return w.render(w.table.Snapshot(), id, p), nil
}

// Converters renders every mini converter in creation order.
func (w *Widget) Converters() []MiniConverter {
	w.mu.Lock()
	ids := make([]int, 0, len(w.converters))
	pairs := make(map[int]Pair, len(w.converters))
	for id, p := range w.converters {
		ids = append(ids, id)
		pairs[id] = p
	}
	w.mu.Unlock()

	slices.Sort(ids)
	snap := w.table.Snapshot()
	out := make([]MiniConverter, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.render(snap, id, pairs[id]))
	}
	return out
}

func (w *Widget) render(snap *RateSnapshot, id int, p Pair) MiniConverter {
	// amount 1 never fails validation
	pr, _ := pairRate(snap, p)
	return MiniConverter{ID: id, PairRate: pr, Line: RateLine(p.From, p.To, pr.Rate)}
}
