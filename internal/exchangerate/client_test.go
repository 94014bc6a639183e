package exchangerate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"service-converter/internal"
	"service-converter/internal/exchangerate"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdPayload = `{
	"provider": "https://www.exchangerate-api.com",
	"base": "USD",
	"date": "2024-12-26",
	"time_last_updated": 1735171201,
	"rates": {"USD": 1, "EUR": 0.961, "GBP": 0.798, "JPY": 157.42}
}`

func TestClient_LatestRates_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(usdPayload))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := exchangerate.New(server.URL + "/")

	result, err := client.LatestRates(context.Background(), internal.USD)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "USD", result.Base)
	assert.Equal(t, "2024-12-26", result.Date.String())
	assert.Equal(t, 0.961, result.Rates["EUR"])
	assert.Equal(t, int64(1735171201), result.TimeLastUpdated)
}

func TestClient_LatestRates_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, err := w.Write([]byte("internal server error"))
		require.NoError(t, err)
	}))
	defer server.Close()

	client := exchangerate.New(server.URL)

	result, err := client.LatestRates(context.Background(), internal.USD)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "internal server error")
}

func TestClient_LatestRates_NoRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"USD","date":"2024-12-26"}`))
	}))
	defer server.Close()

	_, err := exchangerate.New(server.URL).LatestRates(context.Background(), internal.USD)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rates")
}

func TestClient_LatestRates_InvalidBase(t *testing.T) {
	client := exchangerate.New("http://127.0.0.1:0")

	_, err := client.LatestRates(context.Background(), "usd1")

	require.ErrorIs(t, err, internal.ErrInvalidCurrency)
}

func TestClient_FetchRates_TypedAndBaseDropped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(usdPayload))
	}))
	defer server.Close()

	set, err := exchangerate.New(server.URL).FetchRates(context.Background(), internal.USD)

	require.NoError(t, err)
	assert.Equal(t, internal.USD, set.Base)
	assert.Equal(t, map[internal.CurrencyCode]float64{
		internal.EUR: 0.961,
		internal.GBP: 0.798,
		internal.JPY: 157.42,
	}, set.Rates)
	assert.Equal(t, time.Unix(1735171201, 0).UTC(), set.UpdatedAt)
	require.NoError(t, internal.ValidateRates(set.Base, set.Rates))
}

func TestClient_FetchRates_BadQuoteCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"EURO":0.9}}`))
	}))
	defer server.Close()

	_, err := exchangerate.New(server.URL).FetchRates(context.Background(), internal.USD)

	require.ErrorIs(t, err, internal.ErrInvalidCurrency)
	assert.Contains(t, err.Error(), "invalid quote")
}

func TestClient_FetchRates_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := exchangerate.New(server.URL).FetchRates(ctx, internal.USD)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
