package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/sentilens/config"
	"github.com/spacesedan/sentilens/internal/backends"
	"github.com/spacesedan/sentilens/internal/clients/kafka_client"
	"github.com/spacesedan/sentilens/internal/consumers"
	"github.com/spacesedan/sentilens/internal/logging"
	"github.com/spacesedan/sentilens/internal/monitoring"
	"github.com/spacesedan/sentilens/internal/sentiment"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup completes first.
func run() int {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		logging.InitLogger("INFO")
		slog.Error("[Main] Failed to load configuration", slog.String("error", err.Error()))
		return 1
	}
	logging.InitLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		return 1
	}
	if err := cfg.EnsureCacheDir(); err != nil {
		slog.Error("[Main] Failed to create model cache", slog.String("error", err.Error()))
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := monitoring.NewRegistry()
	metrics := monitoring.NewPredictionMetrics(registry)
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           monitoring.Handler(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("[Main] Serving metrics", slog.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	kafkaCfg := kafka_client.GetKafkaConfig()
	if err := kafkaCfg.Validate(); err != nil {
		slog.Error("[Main] Invalid Kafka configuration", slog.String("error", err.Error()))
		return 1
	}

	svc, err := backends.NewService(cfg, sentiment.WithObserver(metrics))
	if err != nil {
		slog.Error("[Main] Failed to create sentiment service", slog.String("error", err.Error()))
		return 1
	}
	defer svc.Close()

	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(kafkaCfg)
		if err == nil {
			break
		}

		slog.Warn("[Main] Kafka producer init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return 0
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	analyzerHealthy := &atomic.Bool{}
	analyzerHealthy.Store(true)
	go monitoring.MonitorBackendHealth(ctx, clockwork.NewRealClock(), svc, analyzerHealthy, cfg.HealthCheckInterval, metrics)

	analyzer := consumers.NewSentimentAnalysisConsumer(svc, producer, kafkaCfg.ResultsTopic)
	kafka_client.RegisterConsumer(kafkaCfg.RequestTopic, consumers.WrapConsumer(
		analyzer.Start).WithHealthCheck(analyzerHealthy).Handler())

	if err := kafka_client.StartConsumer(ctx, kafkaCfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
		return 1
	}
	if err := analyzer.Err(); err != nil {
		slog.Error("[Main] Consumer stopped, exiting for restart",
			slog.String("error", err.Error()))
		return 1
	}
	return 0
}

