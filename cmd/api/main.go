package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/bootstrap"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/config"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/httpserver"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/logging"
)

func main() {
	// load config
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.QueueOptional)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer app.Close()

	handler := httpserver.NewRouter(app.Service, httpserver.Options{
		Logger:         logger.Named("http"),
		Checkers:       app.Checkers(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		StaticDir:      cfg.Server.StaticDir,
		CORSOrigins:    cfg.Server.CORSOrigins,
		APIKeys:        cfg.Auth.APIKeys,
		JWTSecret:      cfg.Auth.JWTSecret,
		RateLimitRPS:   cfg.Server.RateLimit.RPS,
		RateLimitBurst: cfg.Server.RateLimit.Burst,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	go func() {
		logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("database", cfg.Database.Driver),
			zap.String("llm", cfg.LLM.Provider+"/"+cfg.LLM.Model),
			zap.Bool("async", app.Queue != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	// an analysis in flight can take a while
	ctx2, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
