// Package main is the entry point for the trip ledger API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/triplog/internal/config"
	"github.com/pkordes/triplog/internal/handler"
	"github.com/pkordes/triplog/internal/metrics"
	"github.com/pkordes/triplog/internal/middleware"
	"github.com/pkordes/triplog/internal/report"
	"github.com/pkordes/triplog/internal/repo"
	"github.com/pkordes/triplog/internal/schema"
	"github.com/pkordes/triplog/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Logged through the default handler; the JSON logger needs cfg.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Schema -----------------------------------------------------------
	// goose drives database/sql; OpenDBFromPool shares the pgx pool with it.
	sqlDB := stdlib.OpenDBFromPool(pool)
	schemaMgr, err := schema.NewManager(sqlDB, logger)
	if err != nil {
		slog.Error("failed to load migrations", "error", err)
		os.Exit(1)
	}
	// A failed migration leaves the rest applied; serve what the schema allows.
	if err := schemaMgr.Ensure(context.Background()); err != nil {
		if !errors.Is(err, schema.ErrIncomplete) {
			slog.Error("schema migration error", "error", err)
			os.Exit(1)
		}
		slog.Warn("starting with an incomplete schema", "error", err)
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("closing migration handle", "error", err)
	}

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// --- Services ---------------------------------------------------------
	tripSvc := service.NewTripService(
		repo.NewTripRepo(pool),
		service.WithPlateCacheTTL(cfg.PlateCacheTTL),
		service.WithMetrics(m),
	)
	gen := report.New(report.WithLocation(cfg.ReportLocation))
	exportSvc := service.NewExportService(tripSvc, gen, m)
	statsSvc := service.NewStatsService(tripSvc, gen.Now)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit → metrics.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewMetrics(m))

	handler.NewServer(tripSvc, exportSvc, statsSvc, cfg.ReportTitle, logger).Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout leaves room for large report renders.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
