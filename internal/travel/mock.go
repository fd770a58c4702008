package travel

import (
	"context"
	"time"

	"github.com/mlenarti/itinera/internal/intent"
)

// StaticFetcher returns a fixed result after an optional delay. Used by
// engine tests to exercise degradation paths without network access.
type StaticFetcher struct {
	Name   string
	Result FetchResult
	Delay  time.Duration
}

func (f *StaticFetcher) Source() string { return f.Name }

func (f *StaticFetcher) Fetch(ctx context.Context, _ intent.Intent) FetchResult {
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return Unavailable(f.Name, failureReason(ctx.Err()))
		}
	}
	r := f.Result
	if r.Source == "" {
		r.Source = f.Name
	}
	return r
}
