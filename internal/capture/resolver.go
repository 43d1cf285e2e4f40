// Package capture is the interception pipeline: it observes response
// events on a browser tab through the DevTools protocol, resolves
// response bodies, feeds them through the normalizers into the per-tab
// aggregation store, and dispatches snapshots to consumers.
package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrBodyUnavailable marks a fetch failure caused by the response body
// not being buffered yet. Fetchers wrap the underlying protocol error
// with it; the Resolver retries only this class of failure.
var ErrBodyUnavailable = errors.New("response body not yet available")

// BodyFetcher retrieves the raw body of an in-flight request.
type BodyFetcher interface {
	FetchBody(ctx context.Context, requestID string) ([]byte, error)
}

// RetryPolicy bounds the Resolver's retry loop. The defaults are
// empirical constants tuned to Chromium's buffering behavior, kept
// configurable rather than treated as load-bearing precision.
type RetryPolicy struct {
	InitialDelay time.Duration // wait before the first attempt
	RetryDelay   time.Duration // fixed backoff between attempts
	MaxAttempts  int
}

// DefaultRetryPolicy returns the stock timing: 100ms pre-fetch delay,
// then up to 3 attempts 200ms apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialDelay: 100 * time.Millisecond,
		RetryDelay:   200 * time.Millisecond,
		MaxAttempts:  3,
	}
}

// Resolver obtains the full response body for a request identifier.
// Response headers are observed before the body is fully buffered, so
// the first attempt waits a short fixed delay and body-unavailable
// failures are retried up to the policy bound. Any other failure,
// including malformed JSON, is terminal.
type Resolver struct {
	fetch  BodyFetcher
	policy RetryPolicy
}

func NewResolver(fetch BodyFetcher, policy RetryPolicy) *Resolver {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	return &Resolver{fetch: fetch, policy: policy}
}

// Resolve fetches and validates the body for requestID.
func (r *Resolver) Resolve(ctx context.Context, requestID string) ([]byte, error) {
	if err := sleepCtx(ctx, r.policy.InitialDelay); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		body, err := r.fetch.FetchBody(ctx, requestID)
		if err == nil {
			if !json.Valid(body) {
				return nil, fmt.Errorf("request %s: body is not valid JSON", requestID)
			}
			return body, nil
		}
		if !errors.Is(err, ErrBodyUnavailable) {
			return nil, err
		}
		lastErr = err
		if attempt < r.policy.MaxAttempts {
			if serr := sleepCtx(ctx, r.policy.RetryDelay); serr != nil {
				return nil, serr
			}
		}
	}
	return nil, fmt.Errorf("request %s: gave up after %d attempts: %w", requestID, r.policy.MaxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
