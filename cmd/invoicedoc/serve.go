package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	invoicedoc "github.com/alnah/go-invoicedoc"
	"github.com/alnah/go-invoicedoc/internal/config"
	"github.com/alnah/go-invoicedoc/internal/httpapi"
	"github.com/alnah/go-invoicedoc/internal/logger"
)

// runServe starts the HTTP server and blocks until ctx is canceled, then
// drains in-flight requests within the configured shutdown timeout.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return withHint(err, hintFor(err, nil))
	}
	mergeServeFlags(flags, cfg)

	if err := serve(ctx, cfg, env); err != nil {
		return withHint(err, hintFor(err, cfg))
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, env *Environment) error {
	log := logger.Init(env.Stderr, logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	a, err := newApp(ctx, cfg, log, env.Now)
	if err != nil {
		return err
	}

	opts := []httpapi.Option{
		httpapi.WithLogger(log),
		httpapi.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		httpapi.WithReadiness(a.ready),
	}

	var pool *invoicedoc.ExporterPool
	if cfg.PDF.Enabled {
		pool = invoicedoc.NewExporterPool(invoicedoc.ResolvePoolSize(cfg.PDF.Workers), cfg.PDF.Timeout)
		defer func() {
			if err := pool.Close(); err != nil {
				log.Warn("closing PDF exporters", slog.Any("error", err))
			}
		}()
		opts = append(opts, httpapi.WithPDFExporter(pool))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(a.generator, opts...)),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}

	attrs := []any{
		slog.String("addr", ln.Addr().String()),
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("strict_preview", cfg.Preview.Strict),
	}
	if pool != nil {
		attrs = append(attrs, slog.Int("pdf_workers", pool.Size()))
	}
	log.Info("server started", attrs...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info("server stopped")
	return nil
}
