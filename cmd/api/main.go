package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/platform/logging"

	"github.com/pressly/goose/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("database connection OK", "driver", store.Driver)

	if cfg.DB.AutoMigrate {
		goose.SetLogger(database.GooseLogger{Logger: logger})
		if err := store.MigrateUp(ctx); err != nil && !errors.Is(err, database.ErrNoSchema) {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(ctx, cfg, store, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newRouter wires the book endpoints, probes and middleware stack.
// Background work started here stops when ctx is done.
func newRouter(ctx context.Context, cfg *config.Config, store *database.Store, logger *slog.Logger) http.Handler {
	bookHandler := book.NewHTTPHandler(book.NewService(store.Books), logger)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	bookHandler.Register(router)
	router.HandleFunc("/", httpx.NotFound)

	middlewares := []func(http.Handler) http.Handler{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.CORSMiddleware(cfg.HTTP.AllowedOrigins),
		httpx.SecurityHeadersMiddleware(cfg.HTTP.EnableHSTS),
	}
	if cfg.HTTP.RateLimitRPS > 0 {
		limiter := httpx.NewRateLimitMiddleware(ctx, cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
		middlewares = append(middlewares, limiter.Middleware)
	}
	if cfg.HTTP.MaxBodyBytes > 0 {
		middlewares = append(middlewares, httpx.RequestSizeLimitMiddleware(cfg.HTTP.MaxBodyBytes))
	}

	return httpx.Chain(router, middlewares...)
}
