package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lfarias-dev/labreport-pipeline/internal/config"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/ports"
	"github.com/lfarias-dev/labreport-pipeline/internal/core/usecase"
	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/document"
	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/gateway/ailab"
	natsq "github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/queue/nats"
	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/repository/postgres"
	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/resilience"
	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/storage/localfs"
	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/storage/minio"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue    *natsq.Queue
	Repo     ports.ReportRepository
	AuditLog ports.AuditLog

	ExtractUC  ports.ReportExtractor
	ProcessUC  ports.ReportProcessor
	ArtifactUC ports.ArtifactReader
	HistoryUC  ports.ReportHistory

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewReportRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	owners := postgres.NewOwnerDirectory(db)
	auditLog := postgres.NewAuditLog(db)

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := natsq.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsq.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	gateway := ailab.New(
		cfg.AILabURL,
		cfg.AILabAPIKey,
		time.Duration(cfg.AILabTimeoutSeconds)*time.Second,
		executor,
	)
	validator := document.NewPDFValidator()

	extractUC := usecase.NewExtractReportUseCase(owners, repo, storage, gateway, validator, logger)
	processUC := usecase.NewProcessReportUseCase(owners, repo, storage, gateway, queue, logger)
	artifactUC := usecase.NewArtifactUseCase(storage)
	historyUC := usecase.NewHistoryUseCase(repo)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Queue:    queue,
		Repo:     repo,
		AuditLog: auditLog,

		ExtractUC:  extractUC,
		ProcessUC:  processUC,
		ArtifactUC: artifactUC,
		HistoryUC:  historyUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "minio":
		return minio.New(ctx, minio.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case "localfs", "":
		return localfs.New(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
