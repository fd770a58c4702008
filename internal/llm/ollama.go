package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// ollamaClient generates against a local ollama daemon.
type ollamaClient struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

func newOllamaClient(cfg Config) (*ollamaClient, error) {
	var client *api.Client
	host := strings.TrimSpace(cfg.OllamaHost)
	if host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client init: %w", err)
		}
		client = c
	} else {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse OLLAMA_HOST %q: %w", host, err)
		}
		client = api.NewClient(u, http.DefaultClient)
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}
	return &ollamaClient{
		client:      client,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (c *ollamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	var sb strings.Builder
	err := c.client.Generate(ctx, req, func(res api.GenerateResponse) error {
		sb.WriteString(res.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationUnavailable)
	}
	return sb.String(), nil
}
