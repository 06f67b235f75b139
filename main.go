// crateview extracts uploaded archives into browsable folder trees and
// serves query, filter and export operations over the tabular files inside.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crateview/app"
	"crateview/app/settings"
	"crateview/app/web"
)

const defaultListenAddr = ":8080"

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	cfg := settings.GetEffectiveSettings()
	logger := buildLogger(cfg.LogLevel)
	defer logger.Sync()

	addr := os.Getenv("CRATEVIEW_LISTEN_ADDR")
	if addr == "" {
		addr = defaultListenAddr
	}

	logger.Info("crateview starting",
		zap.String("listen", addr),
		zap.Int("itemsPerPage", cfg.ItemsPerPage),
		zap.Int("cacheSizeLimitMB", cfg.CacheSizeLimitMB),
		zap.Bool("viewCache", cfg.EnableViewCache))

	service := app.New(logger)
	server := web.NewServer(service, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Fatal("server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
	}
}

func buildLogger(level string) *zap.Logger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic("logging init error: " + err.Error())
	}
	return logger
}
