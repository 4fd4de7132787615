package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hive-corporation/creditrisk/internal/adapter/handler"
	"github.com/hive-corporation/creditrisk/internal/adapter/metrics"
	"github.com/hive-corporation/creditrisk/internal/config"
	"github.com/hive-corporation/creditrisk/internal/observability"
)

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := observability.InitLogger(cfg.Log, os.Stdout)
	if envErr != nil {
		logger.Debug("no .env file found, using process environment")
	}

	metrics.InitMetrics()
	logger.Info("✅ Prometheus metrics initialized")

	router := handler.NewRouter(handler.NewRestHandler(cfg.ServiceName), cfg.HTTP.AuthToken)

	srv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Info("🚀 credit risk REST API listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("❌ Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("❌ Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("✅ Server stopped gracefully")
}
