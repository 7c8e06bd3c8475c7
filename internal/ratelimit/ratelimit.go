// Package ratelimit implements per-domain request pacing for the crawl
// worker, per §4.5: each domain gets its own independent budget instead
// of one global limiter, so a slow domain never starves the others.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests per domain at a fixed requests-per-second
// budget, lazily creating one golang.org/x/time/rate.Limiter per
// domain the first time it is seen.
type Limiter struct {
	rps float64

	mu      sync.Mutex
	domains map[string]*rate.Limiter
}

// New returns a Limiter allowing requestsPerSecond requests per domain.
func New(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	return &Limiter{
		rps:     requestsPerSecond,
		domains: make(map[string]*rate.Limiter),
	}
}

func (l *Limiter) forDomain(domain string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, ok := l.domains[domain]
	if !ok {
		d = rate.NewLimiter(rate.Limit(l.rps), 1)
		l.domains[domain] = d
	}

	return d
}

// TryReserve implements the reserve-or-skip policy: if the domain's
// token bucket has a token available, it claims it and returns true;
// otherwise it returns false without blocking. Used by C8's scheduler
// loop to admit items from its pending buffer.
func (l *Limiter) TryReserve(domain string) bool {
	return l.forDomain(domain).Allow()
}

// QueueReserve implements the queue-reserve policy: it blocks until a
// slot is available, then claims it, so concurrent callers queue
// monotonically with no thundering herd.
func (l *Limiter) QueueReserve(domain string) {
	reservation := l.forDomain(domain).Reserve()
	if !reservation.OK() {
		return
	}

	if wait := reservation.Delay(); wait > 0 {
		time.Sleep(wait)
	}
}
