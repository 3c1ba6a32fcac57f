// Package fetcher provides decorators composed around a scraper.Fetcher.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haianibrahim/tiktok-scraper/internal/metrics"
	"github.com/haianibrahim/tiktok-scraper/internal/ratelimit"
	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

// Retrying wraps a Fetcher with a bounded fixed-delay retry policy. Only
// transport-class failures are retried; structural failures pass through
// untouched because retrying cannot change them.
type Retrying struct {
	next        scraper.Fetcher
	maxAttempts int
	delay       time.Duration
}

// NewRetrying builds the decorator. maxAttempts counts the first try; a
// value <= 1 disables retries.
func NewRetrying(next scraper.Fetcher, maxAttempts int, delay time.Duration) *Retrying {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Retrying{next: next, maxAttempts: maxAttempts, delay: delay}
}

// Fetch delegates to the wrapped fetcher, retrying retryable failures up to
// the attempt budget with a fixed delay between attempts.
func (r *Retrying) Fetch(ctx context.Context, request scraper.FetchRequest) (scraper.FetchResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			metrics.ObserveFetchRetry()
		}
		response, err := r.next.Fetch(ctx, request)
		if err == nil {
			return response, nil
		}
		lastErr = err
		if !r.shouldRetry(err, attempt) {
			break
		}
		if err := sleep(ctx, r.delay); err != nil {
			break
		}
	}
	return scraper.FetchResponse{}, lastErr
}

func (r *Retrying) shouldRetry(err error, attempt int) bool {
	if attempt >= r.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *scraper.Error
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Paced wraps a Fetcher with per-host outbound pacing so concurrent scrapes
// do not hammer the upstream site regardless of the caller-facing gate.
type Paced struct {
	next  scraper.Fetcher
	pacer *ratelimit.Pacer
}

// NewPaced builds the decorator. A nil pacer passes requests through.
func NewPaced(next scraper.Fetcher, pacer *ratelimit.Pacer) *Paced {
	return &Paced{next: next, pacer: pacer}
}

// Fetch blocks until the host's token bucket admits the request, then
// delegates.
func (p *Paced) Fetch(ctx context.Context, request scraper.FetchRequest) (scraper.FetchResponse, error) {
	if p.pacer != nil {
		if err := p.pacer.Wait(ctx, request.URL); err != nil {
			return scraper.FetchResponse{}, scraper.NewNetworkError(request.URL, err)
		}
	}
	return p.next.Fetch(ctx, request)
}
