package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldside/matchlog/internal/app"
	"github.com/fieldside/matchlog/internal/config"
	"github.com/fieldside/matchlog/internal/observability"
	"github.com/fieldside/matchlog/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()
	slogger := logger.Slog()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownUptrace(ctx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	stopPyroscope, err := observability.InitPyroscope(cfg, slogger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stopPyroscope(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}()

	pprofServer, err := observability.StartPprofServer(cfg, slogger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := observability.StopPprofServer(pprofServer, slogger, 5*time.Second); err != nil {
			logger.Error("stop pprof server", "error", err)
		}
	}()

	srv, cleanup, err := app.NewHTTPServer(cfg, slogger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("http server stopped")
}
