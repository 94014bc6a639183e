package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"service-converter/internal"
	"time"
)

type HTTPRecorder interface {
	RecordHTTP(method, route string, status int, took time.Duration)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// RequestLog writes every request to the audit log and the metrics. ratesAsOf
// reports the as-of date of the rates being served at the time.
func RequestLog(audit internal.RequestAuditLogger, rec HTTPRecorder, ratesAsOf func() *internal.Date, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			status := sw.status
			if status == 0 {
				status = http.StatusOK
			}
			took := time.Since(start)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			if rec != nil {
				rec.RecordHTTP(r.Method, route, status, took)
			}

			entry := internal.RequestRecord{
				Method:   r.Method,
				Path:     r.URL.Path,
				Status:   status,
				Duration: took,
			}
			if ratesAsOf != nil {
				entry.RatesAsOf = ratesAsOf()
			}
			// a client hanging up must not drop the audit record
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
			defer cancel()
			if err := audit.LogRequest(ctx, entry); err != nil {
				logger.Warn("audit log failed", "path", r.URL.Path, "err", err)
			}
		})
	}
}
