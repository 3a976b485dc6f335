package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appjobs "github.com/bryanwahyu/bloodtest-analyzer/internal/application/jobs"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/bootstrap"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/config"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/logging"
)

func main() {
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.QueueRequired)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer app.Close()

	w := &appjobs.Worker{
		Queue:     app.Queue,
		Processor: app.Service,
		Logger:    logger.Named("worker").With(zap.String("queue", cfg.Redis.Queue)),
	}
	if err := w.Run(ctx); err != nil {
		logger.Error("worker stopped", zap.Error(err))
	}
}
