package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hive-corporation/creditrisk/internal/adapter/handler"
	"github.com/hive-corporation/creditrisk/internal/adapter/metrics"
	"github.com/hive-corporation/creditrisk/internal/config"
	"github.com/hive-corporation/creditrisk/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := observability.InitLogger(cfg.Log, os.Stdout)

	metrics.InitMetrics()

	lis, err := net.Listen("tcp", cfg.GRPC.ListenAddr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.GRPC.ListenAddr, "error", err)
		os.Exit(1)
	}

	s := handler.NewServer(handler.NewGrpcServer(), cfg.ServiceName, cfg.GRPC.Reflection)

	go func() {
		logger.Info("🚀 credit risk gRPC API listening", "addr", cfg.GRPC.ListenAddr, "reflection", cfg.GRPC.Reflection)
		if err := s.Serve(lis); err != nil {
			logger.Error("failed to serve", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	s.GracefulStop()
}
