// Package ratelimit paces outgoing requests to a single site.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a name for logging/debugging.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// Every allows one request per interval after an initial burst. A zero
// interval disables pacing.
func Every(name string, interval time.Duration, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		name:    name,
	}
}

// Wait blocks until the next request to the site may proceed.
// Returns an error if the context is cancelled first.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Name returns the site this limiter paces.
func (l *Limiter) Name() string {
	return l.name
}
