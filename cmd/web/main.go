// Command web serves the analysis API over HTTP: group discovery,
// on-demand analysis runs, health, and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"formcli/internal/analysis"
	"formcli/internal/config"
	"formcli/internal/dataprocessing"
	"formcli/internal/infrastructure"
	"formcli/internal/middleware"
	"formcli/internal/selection"
	transport "formcli/internal/transport/http"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	rows, err := dataprocessing.Load(dataprocessing.Source{
		FilePath:       cfg.DataSource.FilePath,
		Sheet:          cfg.DataSource.Sheet,
		TeamColumn:     cfg.Columns.Team,
		LocationColumn: cfg.Columns.Location,
	}, logger)
	if err != nil {
		return fmt.Errorf("load survey data: %w", err)
	}

	runner := analysis.NewRunner(rows, cfg.ToCategories(), cfg.ToScale(), cfg.Thresholds(), cfg.CommentColumns(), logger)
	// Warm the population pass so the first request doesn't pay for it.
	if _, err := runner.Population(); err != nil {
		return fmt.Errorf("population pass: %w", err)
	}

	handler := transport.NewHandler(runner, selection.Available(rows), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compress(5))

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger)
	r.Use(limiter.Handler)

	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "server listening",
			"addr", srv.Addr,
			"responses", len(rows))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.InfoContext(ctx, "shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.InfoContext(ctx, "server stopped")
	return nil
}
