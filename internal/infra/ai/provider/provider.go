// Package provider picks the language model backend from config.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/config"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/ai"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/ai/gemini"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/ai/ollama"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/infra/ai/openai"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/observability"
)

// New returns the configured client wrapped with metrics and logging.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ai.Client, error) {
	var (
		c   ai.Client
		err error
	)
	switch cfg.LLM.Provider {
	case "gemini":
		c, err = gemini.NewClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	case "openai":
		c = openai.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	case "ollama":
		c, err = ollama.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s client: %w", cfg.LLM.Provider, err)
	}
	return Instrument(c, logger), nil
}

type instrumented struct {
	ai.Client
	logger *zap.Logger
}

// Instrument counts every completion and logs failed ones.
func Instrument(c ai.Client, logger *zap.Logger) ai.Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &instrumented{Client: c, logger: logger.Named("llm")}
}

func (i *instrumented) Generate(ctx context.Context, r ai.Request) (string, error) {
	start := time.Now()
	out, err := i.Client.Generate(ctx, r)

	status := "ok"
	switch {
	case errors.Is(err, ai.ErrQuotaExceeded):
		status = "quota"
	case err != nil:
		status = "error"
	}
	observability.LLMRequestsTotal.WithLabelValues(i.Provider(), i.Model(), status).Inc()

	if err != nil {
		i.logger.Warn("completion failed",
			zap.String("provider", i.Provider()),
			zap.String("model", i.Model()),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
	}
	return out, err
}
