package rates

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"service-converter/internal"
	"strconv"
	"strings"
)

type Refresher interface {
	Refresh(ctx context.Context) (internal.RefreshStatus, error)
	Status() internal.RefreshStatus
}

type ConversionRecorder interface {
	RecordConversion(kind string, missing []internal.CurrencyCode)
	RecordInvalidAmount()
}

type Handler struct {
	widget    *internal.Widget
	table     *internal.RateTable
	refresher Refresher
	metrics   ConversionRecorder
	logger    *slog.Logger
}

func New(w *internal.Widget, t *internal.RateTable, r Refresher, m ConversionRecorder, l *slog.Logger) *Handler {
	return &Handler{widget: w, table: t, refresher: r, metrics: m, logger: l}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/convert", h.convert)
	mux.HandleFunc("GET /api/v1/rate", h.rate)
	mux.HandleFunc("GET /api/v1/rates", h.rates)
	mux.HandleFunc("POST /api/v1/rates/refresh", h.refresh)
	mux.HandleFunc("GET /api/v1/popular", h.popular)
	mux.HandleFunc("GET /api/v1/currencies", h.currencies)

	mux.HandleFunc("GET /api/v1/converters", h.listConverters)
	mux.HandleFunc("POST /api/v1/converters", h.addConverter)
	mux.HandleFunc("GET /api/v1/converters/{id}", h.getConverter)
	mux.HandleFunc("PUT /api/v1/converters/{id}", h.setConverter)
	mux.HandleFunc("DELETE /api/v1/converters/{id}", h.removeConverter)
	mux.HandleFunc("POST /api/v1/converters/{id}/swap", h.swapConverter)
}

type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *BusinessError) Error() string { return e.Message }

func bizError(code, msg string) *BusinessError { return &BusinessError{Code: code, Message: msg} }

type ratesResponse struct {
	Base   internal.CurrencyCode             `json:"base"`
	Rates  map[internal.CurrencyCode]float64 `json:"rates"`
	Status internal.RefreshStatus            `json:"status"`
}

type rateResponse struct {
	From         internal.CurrencyCode   `json:"from"`
	To           internal.CurrencyCode   `json:"to"`
	Rate         float64                 `json:"rate"`
	RateText     string                  `json:"rate_text"`
	MissingRates []internal.CurrencyCode `json:"missing_rates,omitempty"`
}

type pairRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, to, err := parsePair(q.Get("from"), q.Get("to"))
	if err != nil {
		h.writeErr(w, err)
		return
	}

	raw := strings.TrimSpace(q.Get("amount"))
	if raw == "" {
		raw = "1"
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		h.metrics.RecordInvalidAmount()
		h.writeErr(w, bizError("invalid_amount", "amount must be a finite number >= 0"))
		return
	}

	convert := h.widget.Convert
	if strict, _ := strconv.ParseBool(q.Get("strict")); strict {
		convert = h.widget.ConvertStrict
	}
	out, err := convert(amount, from, to)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.metrics.RecordConversion("convert", out.MissingRates)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) rate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, to, err := parsePair(q.Get("from"), q.Get("to"))
	if err != nil {
		h.writeErr(w, err)
		return
	}

	pr, err := h.widget.PairRate(internal.Pair{From: from, To: to})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.metrics.RecordConversion("rate", pr.MissingRates)
	writeJSON(w, http.StatusOK, rateResponse{
		From:         from,
		To:           to,
		Rate:         pr.Rate,
		RateText:     internal.RateLine(from, to, pr.Rate),
		MissingRates: pr.MissingRates,
	})
}

func (h *Handler) rates(w http.ResponseWriter, _ *http.Request) {
	snap := h.table.Snapshot()
	writeJSON(w, http.StatusOK, ratesResponse{
		Base:   snap.Base(),
		Rates:  snap.Rates(),
		Status: h.refresher.Status(),
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	st, err := h.refresher.Refresh(r.Context())
	if err != nil {
		h.logger.Warn("manual refresh failed", "err", err)
		writeJSON(w, http.StatusBadGateway, struct {
			BusinessError
			Status internal.RefreshStatus `json:"status"`
		}{
			BusinessError: BusinessError{Code: "refresh_failed", Message: err.Error()},
			Status:        st,
		})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) popular(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.widget.PopularRates())
}

type currencyResponse struct {
	internal.Currency
	Label string `json:"label"`
}

func (h *Handler) currencies(w http.ResponseWriter, _ *http.Request) {
	list := internal.Currencies()
	out := make([]currencyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, currencyResponse{Currency: c, Label: c.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listConverters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.widget.Converters())
}

func (h *Handler) addConverter(w http.ResponseWriter, _ *http.Request) {
	mc, err := h.widget.AddConverter()
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mc)
}

func (h *Handler) getConverter(w http.ResponseWriter, r *http.Request) {
	id, err := converterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	mc, err := h.widget.Converter(id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mc)
}

func (h *Handler) setConverter(w http.ResponseWriter, r *http.Request) {
	id, err := converterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	var req pairRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&req); err != nil {
		h.writeErr(w, bizError("bad_request", "body must be {\"from\":\"USD\",\"to\":\"EUR\"}"))
		return
	}
	from, to, err := parsePair(req.From, req.To)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	mc, err := h.widget.SetConverterPair(id, internal.Pair{From: from, To: to})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mc)
}

func (h *Handler) removeConverter(w http.ResponseWriter, r *http.Request) {
	id, err := converterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if err := h.widget.RemoveConverter(id); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) swapConverter(w http.ResponseWriter, r *http.Request) {
	id, err := converterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	mc, err := h.widget.SwapConverter(id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mc)
}

func parsePair(fromRaw, toRaw string) (internal.CurrencyCode, internal.CurrencyCode, error) {
	from, err := internal.NewCurrencyCode(fromRaw)
	if err != nil {
		return "", "", err
	}
	to, err := internal.NewCurrencyCode(toRaw)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}

func converterID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, bizError("bad_request", "converter id must be a positive integer")
	}
	return id, nil
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	var biz *BusinessError
	var missing *internal.MissingRateError
	status := http.StatusBadRequest

	switch {
	case errors.As(err, &biz):
	case errors.As(err, &missing):
		status = http.StatusUnprocessableEntity
		biz = bizError("missing_rate", missing.Error())
	case errors.Is(err, internal.ErrInvalidCurrency):
		biz = bizError("unsupported_currency", err.Error())
	case errors.Is(err, internal.ErrInvalidAmount):
		biz = bizError("invalid_amount", err.Error())
	case errors.Is(err, internal.ErrConverterNotFound):
		status = http.StatusNotFound
		biz = bizError("converter_not_found", err.Error())
	case errors.Is(err, internal.ErrTooManyConverters):
		status = http.StatusConflict
		biz = bizError("too_many_converters", err.Error())
	default:
		h.logger.Error("request failed", "err", err)
		status = http.StatusInternalServerError
		biz = bizError("internal_error", "internal error")
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, status, biz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
