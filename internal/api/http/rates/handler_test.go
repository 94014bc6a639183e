package rates_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"service-converter/internal"
	rateshttp "service-converter/internal/api/http/rates"
	"service-converter/internal/metrics"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	status internal.RefreshStatus
	err    error
	calls  int
}

func (s *stubRefresher) Refresh(context.Context) (internal.RefreshStatus, error) {
	s.calls++
	return s.status, s.err
}

func (s *stubRefresher) Status() internal.RefreshStatus { return s.status }

type fixture struct {
	mux       *http.ServeMux
	table     *internal.RateTable
	refresher *stubRefresher
	metrics   *metrics.ConverterMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	table, err := internal.NewRateTableWith(internal.USD, map[internal.CurrencyCode]float64{
		internal.EUR: 0.85,
		internal.GBP: 0.73,
		internal.JPY: 110,
	})
	require.NoError(t, err)

	f := &fixture{
		mux:       http.NewServeMux(),
		table:     table,
		refresher: &stubRefresher{status: internal.RefreshStatus{Base: internal.USD, Origin: internal.OriginLive, Version: 1, RatesCount: 3}},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rateshttp.New(internal.NewWidget(table, nil, 2), table, f.refresher, f.metrics, logger).Register(f.mux)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, httptest.NewRequest(method, target, r))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHandler_Convert(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/convert?from=eur&to=gbp&amount=100", "")

	require.Equal(t, http.StatusOK, w.Code)
	out := decode[internal.ConversionView](t, w)
	assert.Equal(t, internal.EUR, out.From)
	assert.Equal(t, internal.GBP, out.To)
	assert.InDelta(t, 85.882352941, out.Result, 1e-6)
	assert.Equal(t, "85.88", out.ResultText)
	assert.Equal(t, "1 EUR = 0.8588 GBP", out.RateText)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ConversionsTotal.WithLabelValues("convert", "false")))
}

func TestHandler_Convert_DefaultAmount(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/convert?from=USD&to=JPY", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "110.00", decode[internal.ConversionView](t, w).ResultText)
}

func TestHandler_Convert_InvalidAmount(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []string{"-5", "abc", "NaN", "Inf", "1,5"} {
		w := f.do(http.MethodGet, "/api/v1/convert?from=USD&to=EUR&amount="+amount, "")

		require.Equal(t, http.StatusBadRequest, w.Code, amount)
		assert.Equal(t, "invalid_amount", decode[rateshttp.BusinessError](t, w).Code)
	}
	assert.Equal(t, 5.0, testutil.ToFloat64(f.metrics.InvalidAmountsTotal))
}

func TestHandler_Convert_UnsupportedCurrency(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/convert?from=US&to=EUR&amount=1", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported_currency", decode[rateshttp.BusinessError](t, w).Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHandler_Convert_ReportsMissingRate(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/convert?from=CHF&to=USD&amount=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	out := decode[internal.ConversionView](t, w)
	assert.Equal(t, 10.0, out.Result)
	assert.Equal(t, []internal.CurrencyCode{internal.CHF}, out.MissingRates)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MissingRateTotal.WithLabelValues("CHF")))
}

func TestHandler_Convert_StrictRejectsMissingRate(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/convert?from=CHF&to=USD&amount=10&strict=true", "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	out := decode[rateshttp.BusinessError](t, w)
	assert.Equal(t, "missing_rate", out.Code)
	assert.Contains(t, out.Message, "CHF")

	w = f.do(http.MethodGet, "/api/v1/convert?from=EUR&to=USD&amount=10&strict=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "11.76", decode[internal.ConversionView](t, w).ResultText)
}

func TestHandler_Rate(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/rate?from=GBP&to=JPY", "")

	require.Equal(t, http.StatusOK, w.Code)
	out := decode[map[string]any](t, w)
	assert.Equal(t, "1 GBP = 150.6849 JPY", out["rate_text"])
	assert.NotContains(t, out, "missing_rates")
}

func TestHandler_Rates(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/rates", "")

	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Base   internal.CurrencyCode             `json:"base"`
		Rates  map[internal.CurrencyCode]float64 `json:"rates"`
		Status internal.RefreshStatus            `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, internal.USD, out.Base)
	assert.Equal(t, 0.85, out.Rates[internal.EUR])
	assert.Equal(t, internal.OriginLive, out.Status.Origin)
}

func TestHandler_Refresh(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/rates/refresh", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.refresher.calls)
	assert.Equal(t, uint64(1), decode[internal.RefreshStatus](t, w).Version)
}

func TestHandler_Refresh_Failure(t *testing.T) {
	f := newFixture(t)
	f.refresher.err = errors.New("refresh rates USD: http 503")
	f.refresher.status.Origin = internal.OriginFallback

	w := f.do(http.MethodPost, "/api/v1/rates/refresh", "")

	require.Equal(t, http.StatusBadGateway, w.Code)
	out := decode[map[string]any](t, w)
	assert.Equal(t, "refresh_failed", out["code"])
	assert.Contains(t, out["message"], "http 503")
	assert.Equal(t, "fallback", out["status"].(map[string]any)["origin"])
}

func TestHandler_Popular(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/popular", "")

	require.Equal(t, http.StatusOK, w.Code)
	out := decode[[]internal.PairRate](t, w)
	require.Len(t, out, len(internal.DefaultPopularPairs))
	assert.Equal(t, "0.8500", out[0].RateText)
	// CAD is not in this table
	assert.Equal(t, []internal.CurrencyCode{internal.CAD}, out[3].MissingRates)
}

func TestHandler_Currencies(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/currencies", "")

	require.Equal(t, http.StatusOK, w.Code)
	out := decode[[]map[string]string](t, w)
	require.Len(t, out, len(internal.Currencies()))
	assert.Equal(t, map[string]string{"code": "AED", "name": "UAE Dirham", "label": "AED - UAE Dirham"}, out[0])
}

func TestHandler_Converters_Lifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/v1/converters", "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[internal.MiniConverter](t, w)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "1 USD = 0.8500 EUR", created.Line)

	w = f.do(http.MethodPut, "/api/v1/converters/1", `{"from":"gbp","to":"jpy"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1 GBP = 150.6849 JPY", decode[internal.MiniConverter](t, w).Line)

	w = f.do(http.MethodPost, "/api/v1/converters/1/swap", "")
	require.Equal(t, http.StatusOK, w.Code)
	swapped := decode[internal.MiniConverter](t, w)
	assert.Equal(t, internal.Pair{From: internal.JPY, To: internal.GBP}, swapped.Pair)

	w = f.do(http.MethodGet, "/api/v1/converters/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/converters", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]internal.MiniConverter](t, w), 1)

	w = f.do(http.MethodDelete, "/api/v1/converters/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, "/api/v1/converters/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "converter_not_found", decode[rateshttp.BusinessError](t, w).Code)
}

func TestHandler_Converters_BadInput(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodPost, "/api/v1/converters", "")

	w := f.do(http.MethodGet, "/api/v1/converters/abc", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decode[rateshttp.BusinessError](t, w).Code)

	w = f.do(http.MethodPut, "/api/v1/converters/1", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decode[rateshttp.BusinessError](t, w).Code)

	w = f.do(http.MethodPut, "/api/v1/converters/1", `{"from":"USD","to":"EURO"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported_currency", decode[rateshttp.BusinessError](t, w).Code)
}

func TestHandler_Converters_Limit(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/v1/converters", "").Code)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/v1/converters", "").Code)

	w := f.do(http.MethodPost, "/api/v1/converters", "")

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "too_many_converters", decode[rateshttp.BusinessError](t, w).Code)

	require.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/v1/converters/1", "").Code)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/v1/converters", "").Code)
}
