package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/lfarias-dev/labreport-pipeline/internal/adapters/http"
	"github.com/lfarias-dev/labreport-pipeline/internal/bootstrap"
	"github.com/lfarias-dev/labreport-pipeline/internal/config"
	"github.com/lfarias-dev/labreport-pipeline/internal/observability/logging"
	"github.com/lfarias-dev/labreport-pipeline/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	m := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		app.ExtractUC,
		app.ProcessUC,
		app.ArtifactUC,
		app.HistoryUC,
		m,
		httpadapter.Options{
			Service:        "api",
			MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
			RateLimitRPS:   cfg.APIRateLimitRPS,
			RateLimitBurst: cfg.APIRateLimitBurst,
			MaxInFlight:    cfg.APIMaxInFlight,
		},
	).Handler()

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
		// Write timeout covers the 4-minute gateway stages plus streaming.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
