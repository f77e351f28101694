package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"retention-dashboard/internal/config"
	"retention-dashboard/internal/middleware"
	"retention-dashboard/internal/observability"
	"retention-dashboard/internal/rowsource"
	"retention-dashboard/internal/server"
	"retention-dashboard/internal/services"
	"retention-dashboard/internal/ui/templates"
)

const (
	renderTimeout    = 10 * time.Second
	initialLoadLimit = 60 * time.Second
	pageCacheMaxAge  = "public, max-age=300"
)

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", pageCacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// buildSource constructs the configured row source. The cleanup function is
// registered as a shutdown hook by the caller.
func buildSource(cfg config.SourceConfig) (rowsource.Source, func(ctx context.Context) error, error) {
	switch cfg.Kind {
	case "csv":
		return rowsource.NewCSVFile(cfg.CSVFile), nil, nil
	case "sheet":
		return rowsource.NewSheet(cfg.SheetURL), nil, nil
	case "mysql":
		src, err := rowsource.OpenMySQL(cfg.MySQLDSN, cfg.MySQLTable)
		if err != nil {
			return nil, nil, err
		}
		return src, func(context.Context) error { return src.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"source_kind", cfg.Source.Kind,
		"cache_ttl", cfg.Source.CacheTTL,
	)

	source, cleanup, err := buildSource(cfg.Source)
	if err != nil {
		logger.Error("failed to build row source", "error", err)
		os.Exit(1)
	}

	analytics := services.NewAnalytics(source, cfg.Source.CacheTTL, logger)

	// Warm the row cache so the first request does not pay the fetch.
	ctx, cancel := context.WithTimeout(context.Background(), initialLoadLimit)
	defer cancel()
	if _, err := analytics.Rows(ctx); err != nil {
		logger.Error("failed to load initial row set", "error", err)
		os.Exit(1)
	}

	pages := &server.PageHandlers{
		Dashboard: handleDashboard,
	}
	srv := server.NewServer(analytics, logger, pages)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	if cleanup != nil {
		gracefulServer.RegisterShutdownHook(cleanup)
	}

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
