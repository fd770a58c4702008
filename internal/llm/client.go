package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrGenerationUnavailable marks every completion failure: endpoint errors,
// rate limiting, timeouts. It is the only error kind the orchestrator
// treats as terminal for a turn.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// Client is one prompt-in/text-out call to an inference endpoint.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config controls client construction.
type Config struct {
	Mode        string // auto, hf, ollama, mock
	Model       string
	HFBaseURL   string
	HFAPIKey    string
	OllamaHost  string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewClient picks a provider. Auto prefers the hosted endpoint when a key
// is configured, then a local ollama daemon, and falls back to the mock so
// the service always starts.
func NewClient(cfg Config) (Client, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.HFAPIKey) != "" {
			return newHFClient(cfg), nil
		}
		if strings.TrimSpace(cfg.OllamaHost) != "" {
			return newOllamaClient(cfg)
		}
		return NewMockClient(), nil
	case "hf":
		if strings.TrimSpace(cfg.HFAPIKey) == "" {
			return nil, errors.New("HF_API_KEY is required for hf mode")
		}
		return newHFClient(cfg), nil
	case "ollama":
		return newOllamaClient(cfg)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Mode)
	}
}

// SelfTest issues a tiny completion to verify the endpoint is reachable.
// Used by the readiness probe; failures are reported, not fatal.
func SelfTest(ctx context.Context, c Client) error {
	_, err := c.Complete(ctx, "Say 'ready' in one word.")
	return err
}
