package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inklings-backend/infrastructure/di"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	container, err := di.InitializeContainer(di.ConfigPath(*configPath))
	if err != nil {
		zap.NewExample().Fatal("failed to initialize", zap.Error(err))
	}
	defer container.Shutdown()

	logger := container.Logger
	logger.Info("inklings backend started",
		zap.String("environment", container.Config.Environment),
		zap.String("storage", container.Config.Storage.Backend),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    container.Config.Metrics.ListenAddr,
		Handler: mux,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	_ = server.Close()
}
