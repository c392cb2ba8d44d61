package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"schoolsite/internal/backend"
	"schoolsite/internal/cli"
	"schoolsite/internal/core"
	apphttp "schoolsite/internal/http"
	applog "schoolsite/internal/log"
	"schoolsite/internal/services"
)

func main() {
	cfg, logger, err := cli.Bootstrap(applog.ComponentApp, nil)
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	policy := core.AggregatePolicy{ActiveOnly: cfg.AggregateActiveOnly}
	fees := services.NewFeeService(res.Backend, res.Publisher, policy, logger)
	directory := services.NewDirectoryService(res.Backend, res.Backend)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheTTL:           cfg.CacheTTL,
		Logger:             logger,
	}, fees, directory, res.Backend)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting schoolsite server",
			"port", cfg.Port, "backend", cfg.DataBackend, "publisher", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
