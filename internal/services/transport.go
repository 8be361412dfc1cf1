package services

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitedTransport waits on a token bucket before every request.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitedTransport wraps base so that at most rps requests per second (with the given burst) are sent.
//
// A non-positive rps returns base unchanged.
func NewRateLimitedTransport(base http.RoundTripper, rps float64, burst int) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if rps <= 0 {
		return base
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedTransport{base: base, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
