package metrics

import (
	"strconv"
	"time"

	"service-converter/internal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConverterMetrics holds every collector of the service.
type ConverterMetrics struct {
	// refresh
	RefreshTotal    *prometheus.CounterVec
	RefreshDuration *prometheus.HistogramVec
	RatesLoaded     prometheus.Gauge
	UsingFallback   prometheus.Gauge
	RatesVersion    prometheus.Gauge
	LastUpdated     prometheus.Gauge

	// conversions
	ConversionsTotal    *prometheus.CounterVec
	MissingRateTotal    *prometheus.CounterVec
	InvalidAmountsTotal prometheus.Counter

	// http
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *ConverterMetrics {
	f := promauto.With(reg)
	return &ConverterMetrics{
		RefreshTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_refresh_total",
				Help: "Rate refreshes by outcome",
			},
			[]string{"outcome"},
		),
		RefreshDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rates_refresh_duration_seconds",
				Help:    "Time spent fetching and applying rates",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"outcome"},
		),
		RatesLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "rates_loaded",
			Help: "Number of currencies in the current rate table",
		}),
		UsingFallback: f.NewGauge(prometheus.GaugeOpts{
			Name: "rates_using_fallback",
			Help: "1 while the built-in fallback rates are served",
		}),
		RatesVersion: f.NewGauge(prometheus.GaugeOpts{
			Name: "rates_version",
			Help: "Refresh sequence number of the current rate table",
		}),
		LastUpdated: f.NewGauge(prometheus.GaugeOpts{
			Name: "rates_last_updated_timestamp_seconds",
			Help: "Unix time of the last applied rate table",
		}),

		ConversionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_total",
				Help: "Conversions served",
			},
			[]string{"kind", "degraded"},
		),
		MissingRateTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversions_missing_rate_total",
				Help: "Conversions that priced a currency 1:1 for lack of a rate",
			},
			[]string{"currency"},
		),
		InvalidAmountsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "conversions_invalid_amount_total",
			Help: "Conversions rejected for a negative or non-finite amount",
		}),

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *ConverterMetrics) RecordRefresh(outcome string, took time.Duration) {
	m.RefreshTotal.WithLabelValues(outcome).Inc()
	m.RefreshDuration.WithLabelValues(outcome).Observe(took.Seconds())
}

func (m *ConverterMetrics) RecordStatus(st internal.RefreshStatus) {
	m.RatesLoaded.Set(float64(st.RatesCount))
	m.RatesVersion.Set(float64(st.Version))
	if st.UsingFallback() {
		m.UsingFallback.Set(1)
	} else {
		m.UsingFallback.Set(0)
	}
	if !st.UpdatedAt.IsZero() {
		m.LastUpdated.Set(float64(st.UpdatedAt.Unix()))
	}
}

func (m *ConverterMetrics) RecordConversion(kind string, missing []internal.CurrencyCode) {
	m.ConversionsTotal.WithLabelValues(kind, strconv.FormatBool(len(missing) > 0)).Inc()
	for _, c := range missing {
		m.MissingRateTotal.WithLabelValues(c.String()).Inc()
	}
}

func (m *ConverterMetrics) RecordInvalidAmount() {
	m.InvalidAmountsTotal.Inc()
}

func (m *ConverterMetrics) RecordHTTP(method, route string, status int, took time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(took.Seconds())
}
