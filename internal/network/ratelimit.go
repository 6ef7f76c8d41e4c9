// File: internal/network/ratelimit.go
package network

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitedTransport delays each request until the limiter grants a token.
// The upstream weather API enforces a per-key quota, so parallel workers
// share one limiter through the shared client.
type RateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitedTransport allows rps requests per second with the given burst.
// A burst below one is treated as one.
func NewRateLimitedTransport(base http.RoundTripper, rps float64, burst int) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return t.base.RoundTrip(req)
}
