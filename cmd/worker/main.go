package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lfarias-dev/labreport-pipeline/internal/bootstrap"
	"github.com/lfarias-dev/labreport-pipeline/internal/config"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
	natsq "github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/queue/nats"
	"github.com/lfarias-dev/labreport-pipeline/internal/observability/logging"
	"github.com/lfarias-dev/labreport-pipeline/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	m := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: m.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeReportFinalized(ctx, func(handlerCtx context.Context, event natsq.FinalizedEvent) error {
		recordCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		entry := domain.AuditEntry{
			DocumentKey: event.DocumentKey,
			OwnerKey:    event.OwnerKey,
			OccurredAt:  event.FinalizedAt,
		}
		if err := app.AuditLog.RecordFinalization(recordCtx, entry); err != nil {
			m.ObserveEvent("failure")
			return err
		}
		m.ObserveEvent("success")
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
