package internal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RequestRecord is one served API request.
type RequestRecord struct {
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	RatesAsOf *Date
}

type RequestAuditLogger interface {
	LogRequest(ctx context.Context, rec RequestRecord) error
}

type AuditLogStorage interface {
	Insert(ctx context.Context, rec RequestRecord) error
}

func NewStorageAuditLogger(storage AuditLogStorage) *StorageAuditLogger {
	return &StorageAuditLogger{auditLogStorage: storage}
}

type StorageAuditLogger struct {
	auditLogStorage AuditLogStorage
}

func (l *StorageAuditLogger) LogRequest(ctx context.Context, rec RequestRecord) error {
	p := strings.TrimSpace(rec.Path)
	p = strings.Trim(p, "/")
	if p == "" {
		p = "unknown"
	}
	rec.Path = p
	rec.Method = strings.ToUpper(strings.TrimSpace(rec.Method))

	if err := l.auditLogStorage.Insert(ctx, rec); err != nil {
		return fmt.Errorf("audit log %s %s: %w", rec.Method, rec.Path, err)
	}
	return nil
}

// DiscardAuditLog drops every record; used when no database is configured.
type DiscardAuditLog struct{}

func (DiscardAuditLog) Insert(context.Context, RequestRecord) error { return nil }
