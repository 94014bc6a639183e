package internal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type RatesOrigin string

const (
	OriginNone     RatesOrigin = "none"
	OriginLive     RatesOrigin = "live"
	OriginFallback RatesOrigin = "fallback"
)

// Refresh outcomes as reported to a RefreshRecorder.
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
	OutcomeKept     = "kept"
	OutcomeStale    = "stale"
)

type RefreshStatus struct {
	Base        CurrencyCode `json:"base"`
	Origin      RatesOrigin  `json:"origin"`
	AsOf        Date         `json:"as_of"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Version     uint64       `json:"version"`
	RatesCount  int          `json:"rates_count"`
	LastError   string       `json:"last_error,omitempty"`
	LastAttempt time.Time    `json:"last_attempt"`
}

func (s RefreshStatus) UsingFallback() bool { return s.Origin == OriginFallback }

type RefreshRecorder interface {
	RecordRefresh(outcome string, took time.Duration)
}

// Refresher pulls rates from a RatesSource into a RateTable.
//
// Every call to Refresh takes the next sequence number and the table is only
// swapped when that number is newer than the one already applied, so a slow
// refresh finishing after a faster, later one is dropped.
//
// On failure the last live rates are kept. When no live rates were ever
// loaded the built-in fallback set is installed instead, at the current
// version, so any live result still in flight replaces it.
type Refresher struct {
	source   RatesSource
	table    *RateTable
	base     CurrencyCode
	timeout  time.Duration
	logger   *slog.Logger
	recorder RefreshRecorder
	now      func() time.Time

	seq atomic.Uint64

	mu         sync.RWMutex
	status     RefreshStatus
	attemptSeq uint64
	observers  []func(RefreshStatus)
}

type RefresherOption func(*Refresher)

func WithFetchTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) { r.timeout = d }
}

func WithLogger(l *slog.Logger) RefresherOption {
	return func(r *Refresher) { r.logger = l }
}

func WithRecorder(rec RefreshRecorder) RefresherOption {
	return func(r *Refresher) { r.recorder = rec }
}

func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

func NewRefresher(source RatesSource, table *RateTable, base CurrencyCode, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		source:  source,
		table:   table,
		base:    base,
		timeout: 10 * time.Second,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	r.status = RefreshStatus{Base: table.Base(), Origin: OriginNone, Version: table.Version()}
	return r
}

func (r *Refresher) Status() RefreshStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Subscribe registers fn to run after every applied swap of the table.
func (r *Refresher) Subscribe(fn func(RefreshStatus)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// Refresh fetches the latest rates and swaps them in. The returned error is
// the fetch or validation failure, even when fallback rates were installed.
func (r *Refresher) Refresh(ctx context.Context) (RefreshStatus, error) {
	seq := r.seq.Add(1)
	start := r.now()

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	set, err := r.source.FetchRates(fetchCtx, r.base)
	cancel()

	if err == nil {
		applied, rerr := r.table.ReplaceIfNewer(seq, set.Base, set.Rates)
		switch {
		case rerr != nil:
			err = fmt.Errorf("rates payload: %w", rerr)
		case !applied:
			r.discardStale(seq, start)
			return r.Status(), nil
		default:
			updated := set.UpdatedAt
			if updated.IsZero() {
				updated = start
			}
			st := RefreshStatus{
				Base:        set.Base,
				Origin:      OriginLive,
				AsOf:        set.AsOf,
				UpdatedAt:   updated,
				Version:     seq,
				RatesCount:  len(set.Rates),
				LastAttempt: start,
			}
			r.publish(seq, st)
			r.record(OutcomeLive, start)
			r.logger.Info("rates updated", "base", set.Base, "date", set.AsOf.String(), "count", len(set.Rates), "version", seq)
			return st, nil
		}
	}

	err = fmt.Errorf("refresh rates %s: %w", r.base, err)

	// Only live swaps advance the version, so a non-zero version means live
	// rates are in the table even when their status is not published yet.
	current := r.table.Version()
	if current > 0 || r.Status().Origin == OriginLive {
		r.logger.Warn("rates refresh failed, keeping last live rates", "base", r.base, "err", err)
		r.noteFailure(seq, start, err)
		r.record(OutcomeKept, start)
		return r.Status(), err
	}

	r.logger.Warn("rates refresh failed, installing fallback rates", "base", r.base, "err", err)
	// Fallback rates are not newer data: they keep the current version so
	// a live result from an earlier attempt still replaces them.
	fb := FallbackRates(r.base)
	applied, ferr := r.table.ReplaceAtVersion(current, fb.Base, fb.Rates)
	if ferr != nil {
		return r.Status(), fmt.Errorf("%w; fallback: %v", err, ferr)
	}
	if !applied {
		r.noteFailure(seq, start, err)
		r.record(OutcomeKept, start)
		return r.Status(), err
	}

	st := RefreshStatus{
		Base:        fb.Base,
		Origin:      OriginFallback,
		UpdatedAt:   start,
		Version:     current,
		RatesCount:  len(fb.Rates),
		LastError:   err.Error(),
		LastAttempt: start,
	}
	r.publish(current, st)
	r.record(OutcomeFallback, start)
	return st, err
}

func (r *Refresher) publish(seq uint64, st RefreshStatus) {
	r.mu.Lock()
	if seq < r.status.Version {
		r.mu.Unlock()
		return
	}
	r.status = st
	if seq > r.attemptSeq {
		r.attemptSeq = seq
	}
	observers := append([]func(RefreshStatus){}, r.observers...)
	r.mu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
}

func (r *Refresher) noteFailure(seq uint64, at time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq < r.attemptSeq {
		return
	}
	r.attemptSeq = seq
	r.status.LastError = err.Error()
	r.status.LastAttempt = at
}

func (r *Refresher) discardStale(seq uint64, start time.Time) {
	r.logger.Info("discarding out-of-order refresh", "version", seq, "current", r.table.Version())
	r.record(OutcomeStale, start)
}

func (r *Refresher) record(outcome string, start time.Time) {
	if r.recorder != nil {
		r.recorder.RecordRefresh(outcome, r.now().Sub(start))
	}
}
