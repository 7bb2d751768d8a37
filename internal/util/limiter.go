package util

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter hands out one token bucket per hostname so a logo prefetch
// spreads its requests across CDNs. A nil *HostLimiter never waits.
type HostLimiter struct {
	every rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		every:   rate.Limit(reqPerSec),
		burst:   max(burst, 1),
		buckets: map[string]*rate.Limiter{},
	}
}

// WaitURL blocks until the bucket for raw's hostname has a token. Ports and
// case are ignored; unparseable URLs share one bucket.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	if hl == nil {
		return nil
	}
	host := "_"
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		host = strings.ToLower(u.Hostname())
	}
	return hl.bucket(host).Wait(ctx)
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()
	b, ok := hl.buckets[host]
	if !ok {
		b = rate.NewLimiter(hl.every, hl.burst)
		hl.buckets[host] = b
	}
	return b
}
