package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aihorizon/horizon/internal/bootstrap"
	"github.com/aihorizon/horizon/internal/config"
	"github.com/aihorizon/horizon/internal/observability/logging"
	"github.com/aihorizon/horizon/internal/observability/metrics"
)

const serviceName = "horizon-sync-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	if app.SyncUC == nil {
		log.Fatal("no file search store configured, nothing to sync")
	}

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", workerMetrics.Handler())
		if err := http.ListenAndServe(":"+cfg.WorkerMetricsPort, mux); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_error", "error", err.Error())
		}
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeArtifactStored(ctx, func(handlerCtx context.Context, artifactID string) error {
		syncCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartSync()
		start := time.Now()
		syncErr := app.SyncUC.SyncByID(syncCtx, artifactID)
		workerMetrics.FinishSync(serviceName, time.Since(start), syncErr)
		return syncErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
