// Package bootstrap wires config into the services used by the api, the
// worker and the CLI.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/application"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/application/pipeline"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/application/reports"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/config"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/jobs"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/ai/prompt"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/ai/provider"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/ai/tools"
	mysqlp "github.com/bryanwahyu/bloodtest-analyzer/internal/infra/db/mysql"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/db/postgres"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/db/sqlite"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/pdf"
	redisq "github.com/bryanwahyu/bloodtest-analyzer/internal/infra/queue/redis"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/storage"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/middleware"
)

// QueueMode says how much an entry point depends on Redis.
type QueueMode int

const (
	// QueueOff skips Redis entirely (local CLI analysis).
	QueueOff QueueMode = iota
	// QueueOptional logs and continues without async support if Redis is down.
	QueueOptional
	// QueueRequired fails startup if Redis is unreachable.
	QueueRequired
)

type pinger interface {
	Ping(ctx context.Context) error
}

type artifactStore interface {
	jobs.ArtifactStore
	pinger
}

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sql.DB
	Redis   *goredis.Client
	Queue   *redisq.Queue
	Store   artifactStore
	Service *reports.Service

	queueMode QueueMode
}

// New opens the database, the artifact store and (per mode) Redis, and
// assembles the pipeline and the report service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, mode QueueMode) (*App, error) {
	app := &App{Config: cfg, Logger: logger, queueMode: mode}

	db, repo, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s connect error: %w", cfg.Database.Driver, err)
	}
	app.DB = db

	store, err := openStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	app.Store = store

	if mode != QueueOff {
		rdb, err := redisq.Connect(ctx, cfg.Redis.URL)
		switch {
		case err == nil:
			app.Redis = rdb
			app.Queue = redisq.New(rdb, cfg.Redis.Queue, cfg.Redis.StatusTTL)
		case mode == QueueRequired:
			app.Close()
			return nil, err
		default:
			logger.Warn("redis unavailable, async analysis disabled", zap.Error(err))
		}
	}

	runner, err := NewPipeline(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Service = &reports.Service{
		Repo:      repo,
		Pipeline:  runner,
		Artifacts: store,
		Clock:     application.SystemClock{},
		Logger:    logger,
		UploadDir: cfg.Server.UploadDir,
	}
	// a nil *Queue must not end up inside the interface
	if app.Queue != nil {
		app.Service.Queue = app.Queue
	}
	return app, nil
}

// NewPipeline builds the four-step runner on the configured model.
func NewPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pipeline.Runner, error) {
	client, err := provider.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	tasks, err := prompt.BloodReportTasks(prompt.Tools{
		ReportReader: tools.ReportReader{},
		Nutrition:    tools.NewNutritionGenerator(client, cfg.LLM.ToolTemperature),
		Exercise:     tools.NewExerciseGenerator(client, cfg.LLM.ToolTemperature),
	})
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(tasks, client, pdf.Extract, logger.Named("pipeline"))
	runner.Temperature = cfg.LLM.Temperature
	runner.MaxTokens = cfg.LLM.MaxTokens
	return runner, nil
}

// Checkers backs GET /health and /readyz. Redis only degrades the api,
// since synchronous analysis works without it.
func (a *App) Checkers() map[string]middleware.HealthChecker {
	checks := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: a.DB},
		"storage":  middleware.CheckFunc(a.Store.Ping),
	}
	if a.Queue != nil {
		var redis middleware.HealthChecker = middleware.CheckFunc(a.Queue.Ping)
		if a.queueMode == QueueOptional {
			redis = middleware.Optional(redis)
		}
		checks["redis"] = redis
	}
	return checks
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, analysis.Repository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, mysqlp.NewAnalysisRepository(db), nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, postgres.NewAnalysisRepository(db), nil
	default:
		db, err := sqlite.Open(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return db, sqlite.NewAnalysisRepository(db), nil
	}
}

func openStore(ctx context.Context, cfg *config.Config) (artifactStore, error) {
	if cfg.Storage.Backend == "minio" {
		return storage.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
	}
	return storage.NewLocal(cfg.Storage.LocalDir)
}
