package travel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mlenarti/itinera/internal/intent"
)

type Status string

const (
	StatusSuccess       Status = "success"
	StatusUnavailable   Status = "unavailable"
	StatusNotApplicable Status = "not_applicable"
)

// FetchResult is one source's contribution to a turn. A fetcher never
// returns an error: transport and auth failures become unavailable results
// so that no single source can abort the turn.
type FetchResult struct {
	Source  string `json:"source"`
	Status  Status `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Summary string `json:"summary,omitempty"`
}

func Success(source, summary string) FetchResult {
	return FetchResult{Source: source, Status: StatusSuccess, Summary: summary}
}

func Unavailable(source, reason string) FetchResult {
	return FetchResult{Source: source, Status: StatusUnavailable, Reason: reason}
}

func NotApplicable(source, reason string) FetchResult {
	return FetchResult{Source: source, Status: StatusNotApplicable, Reason: reason}
}

// Fetcher wraps one external data source. Implementations apply their own
// bounded timeout on top of the caller's context.
type Fetcher interface {
	Source() string
	Fetch(ctx context.Context, it intent.Intent) FetchResult
}

// getJSON performs a GET and decodes a JSON body, keeping error texture
// consistent across the fetchers.
func getJSON(ctx context.Context, client *http.Client, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return fmt.Errorf("authentication rejected (status %d)", res.StatusCode)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return fmt.Errorf("unexpected status %d: %s", res.StatusCode, string(body))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// failureReason folds transport errors into a short human-readable reason.
// Timeouts are named explicitly so the formatter's disclaimer stays honest.
func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}
