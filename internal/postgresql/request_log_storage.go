package postgresql

import (
	"context"
	"fmt"
	"service-converter/internal"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of *pgxpool.Pool the storage needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type RequestLogStorage struct {
	db Execer
}

func NewRequestLogStorage(db Execer) *RequestLogStorage {
	return &RequestLogStorage{db: db}
}

func (s *RequestLogStorage) Insert(ctx context.Context, rec internal.RequestRecord) error {
	path := strings.TrimSpace(rec.Path)
	if path == "" {
		path = "unknown"
	}

	var asOf *time.Time
	if rec.RatesAsOf != nil && !rec.RatesAsOf.IsZero() {
		t := internal.NewDate(rec.RatesAsOf.Time).Time
		asOf = &t
	}

	_, err := s.db.Exec(ctx, `
insert into request_log (method, path, status, duration_ms, rates_as_of)
values ($1, $2, $3, $4, $5::date);
`, rec.Method, path, rec.Status, rec.Duration.Milliseconds(), asOf)
	if err != nil {
		return fmt.Errorf("insert request_log: %w", err)
	}
	return nil
}
