package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"service-converter/internal"
	"service-converter/internal/api/http/middleware"
	rateshttp "service-converter/internal/api/http/rates"
	"service-converter/internal/exchangerate"
	"service-converter/internal/metrics"
	"service-converter/internal/postgresql"
	"service-converter/internal/postgresql/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	// env
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	// audit log storage
	var auditStorage internal.AuditLogStorage = internal.DiscardAuditLog{}
	if cfg.DatabaseURL != "" {
		dbCtx, cancelDB := context.WithTimeout(ctx, 5*time.Second)
		defer cancelDB()

		pool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		defer pool.Close()

		if err := migrations.New(pool).Setup(dbCtx); err != nil {
			return fmt.Errorf("ensure tables: %w", err)
		}
		auditStorage = postgresql.NewRequestLogStorage(pool)
	} else {
		logger.Warn("DATABASE_URL is empty, request audit log disabled")
	}
	auditLogger := internal.NewStorageAuditLogger(auditStorage)

	m := metrics.New(prometheus.DefaultRegisterer)

	// rates
	table := internal.NewRateTable(cfg.BaseCCY)
	client := exchangerate.New(cfg.RatesAPIURL)
	refresher := internal.NewRefresher(client, table, cfg.BaseCCY,
		internal.WithFetchTimeout(cfg.FetchTimeout),
		internal.WithLogger(logger),
		internal.WithRecorder(m),
	)
	refresher.Subscribe(m.RecordStatus)

	// instant fetch
	if _, err := refresher.Refresh(ctx); err != nil {
		logger.Warn("initial fetch failed", "err", err)
	}

	// cron
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return fmt.Errorf("load location %s: %w", cfg.Location, err)
	}
	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
	)

	// http
	widget := internal.NewWidget(table, cfg.PopularPairs, cfg.MaxConverters)
	ratesHandler := rateshttp.New(widget, table, refresher, m, logger)

	mux := http.NewServeMux()
	ratesHandler.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	ratesAsOf := func() *internal.Date {
		st := refresher.Status()
		if st.AsOf.IsZero() {
			return nil
		}
		return &st.AsOf
	}
	handler := middleware.RequestLog(auditLogger, m, ratesAsOf, logger)(mux)

	g, gctx := errgroup.WithContext(ctx)

	_, err = scheduler.AddFunc(cfg.CronSpec, func() {
		if _, err := refresher.Refresh(gctx); err != nil {
			logger.Warn("scheduled refresh failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("add cron func: %w", err)
	}

	g.Go(func() error {
		return runCron(gctx, scheduler)
	})

	g.Go(func() error {
		return serveHTTP(gctx, ":"+cfg.HTTPPort, handler, logger)
	})

	logger.Info("running, stop with Ctrl+C / SIGTERM", "base", cfg.BaseCCY, "cron", cfg.CronSpec)
	return g.Wait()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func runCron(ctx context.Context, c *cron.Cron) error {
	c.Start()
	defer func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}()

	<-ctx.Done()
	return nil
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	logger.Info("HTTP listening", "addr", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
