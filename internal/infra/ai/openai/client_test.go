package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/ai"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float32 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.InDelta(t, 0.7, body.Temperature, 0.001)
		assert.Equal(t, 512, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "You are a doctor.", body.Messages[0].Content)
		assert.Equal(t, "user", body.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"ALP is high."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	c := NewClient("test-key", "", server.URL+"/v1")
	assert.Equal(t, "openai", c.Provider())
	assert.Equal(t, "gpt-4o-mini", c.Model())

	out, err := c.Generate(context.Background(), ai.Request{
		System:      "You are a doctor.",
		Prompt:      "Summarize.",
		Temperature: 0.7,
		MaxTokens:   512,
	})
	require.NoError(t, err)
	assert.Equal(t, "ALP is high.", out)
}

func TestGenerateQuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota","type":"insufficient_quota"}}`))
	}))
	defer server.Close()

	c := NewClient("k", "gpt-4o", server.URL+"/v1")
	_, err := c.Generate(context.Background(), ai.Request{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestGenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	c := NewClient("k", "gpt-4o", server.URL+"/v1")
	_, err := c.Generate(context.Background(), ai.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, isReasoningModel("o3-mini"))
	assert.True(t, isReasoningModel("gpt-5"))
	assert.False(t, isReasoningModel("gpt-4o"))
}
