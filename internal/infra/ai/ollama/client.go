// Package ollama adapts a local Ollama server to the ai.Client port.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/bryanwahyu/bloodtest-analyzer/internal/domain/ai"
)

const defaultModel = "llama3.1"

type Client struct {
	api   *api.Client
	model string
}

// NewClient connects to host, or to OLLAMA_HOST when host is empty.
func NewClient(host, model string) (*Client, error) {
	if model == "" {
		model = defaultModel
	}
	var (
		c   *api.Client
		err error
	)
	if host == "" {
		c, err = api.ClientFromEnvironment()
	} else {
		var u *url.URL
		u, err = url.Parse(host)
		if err == nil {
			c = api.NewClient(u, http.DefaultClient)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &Client{api: c, model: model}, nil
}

func (c *Client) Provider() string { return "ollama" }

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, r ai.Request) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:   c.model,
		Stream:  &stream,
		Options: map[string]any{},
	}
	if r.System != "" {
		req.Messages = append(req.Messages, api.Message{Role: "system", Content: r.System})
	}
	req.Messages = append(req.Messages, api.Message{Role: "user", Content: r.Prompt})
	if r.Temperature > 0 {
		req.Options["temperature"] = r.Temperature
	}
	if r.MaxTokens > 0 {
		req.Options["num_predict"] = r.MaxTokens
	}

	var out strings.Builder
	err := c.api.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		if se, ok := err.(api.StatusError); ok && se.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %s", ai.ErrQuotaExceeded, se.ErrorMessage)
		}
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if out.Len() == 0 {
		return "", ai.ErrEmptyResponse
	}
	return out.String(), nil
}
