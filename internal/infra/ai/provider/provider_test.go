package provider

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/config"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/ai"
	"github.com/bryanwahyu/bloodtest-analyzer/internal/observability"
)

type fixedClient struct{ err error }

func (f fixedClient) Generate(context.Context, ai.Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}
func (fixedClient) Provider() string { return "fixed" }
func (fixedClient) Model() string    { return "m" }

func TestInstrumentCounts(t *testing.T) {
	ok := observability.LLMRequestsTotal.WithLabelValues("fixed", "m", "ok")
	quota := observability.LLMRequestsTotal.WithLabelValues("fixed", "m", "quota")
	beforeOK, beforeQuota := testutil.ToFloat64(ok), testutil.ToFloat64(quota)

	out, err := Instrument(fixedClient{}, zap.NewNop()).Generate(context.Background(), ai.Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = Instrument(fixedClient{err: ai.ErrQuotaExceeded}, nil).Generate(context.Background(), ai.Request{})
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeQuota+1, testutil.ToFloat64(quota))
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o"
	cfg.LLM.APIKey = "k"
	c, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider())
	assert.Equal(t, "gpt-4o", c.Model())

	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = ""
	cfg.LLM.BaseURL = "http://127.0.0.1:11434"
	c, err = New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.Provider())

	cfg.LLM.Provider = "bard"
	_, err = New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
