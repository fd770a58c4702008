package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mlenarti/itinera/internal/reliability"
)

const defaultHFBaseURL = "https://router.huggingface.co/v1"

// hfClient talks to a hosted chat-completions endpoint (Hugging Face
// inference router or anything OpenAI-shaped).
type hfClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

func newHFClient(cfg Config) *hfClient {
	base := strings.TrimRight(strings.TrimSpace(cfg.HFBaseURL), "/")
	if base == "" {
		base = defaultHFBaseURL
	}
	return &hfClient{
		baseURL:     base,
		apiKey:      cfg.HFAPIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *hfClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrGenerationUnavailable, err)
	}

	// One retry on retryable statuses keeps transient rate limits from
	// failing the whole turn.
	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, ctx.Err())
			case <-time.After(reliability.ExponentialBackoff(attempt, 500*time.Millisecond, 2*time.Second)):
			}
		}
		text, retryable, err := c.completeOnce(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

func (c *hfClient) completeOnce(ctx context.Context, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("%w: create request: %v", ErrGenerationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		retryable := !errors.Is(err, context.Canceled)
		return "", retryable, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		err := fmt.Errorf("%w: status %d: %s", ErrGenerationUnavailable, res.StatusCode, strings.TrimSpace(string(body)))
		return "", reliability.IsRetryableHTTPStatus(res.StatusCode), err
	}

	var out chatResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("%w: decode response: %v", ErrGenerationUnavailable, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", false, fmt.Errorf("%w: empty completion", ErrGenerationUnavailable)
	}
	return out.Choices[0].Message.Content, false, nil
}
