package xai

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/outliyr/x-search-mcp/internal/domain/search"
)

const searchTimeout = 60 * time.Second

// Resilient wraps a Searcher with retry and timeout. Live search calls are
// slow and flaky enough to deserve one retry.
type Resilient struct {
	inner search.Searcher
}

// NewResilient wraps inner with the standard retry/timeout policy.
func NewResilient(inner search.Searcher) *Resilient {
	return &Resilient{inner: inner}
}

// Search implements search.Searcher.
func (r *Resilient) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	rt := retry.New[*search.Result](retry.Config{
		MaxAttempts:   2,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})
	to := timeout.New[*search.Result](timeout.Config{
		DefaultTimeout: searchTimeout,
	})

	return to.Execute(ctx, searchTimeout, func(ctx context.Context) (*search.Result, error) {
		return rt.Do(ctx, func(ctx context.Context) (*search.Result, error) {
			return r.inner.Search(ctx, q)
		})
	})
}
