// Package ratelimit throttles message submissions per user.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultRPS   = 1.0
	DefaultBurst = 5
	// DefaultIdleTTL is how long an unused limiter is kept.
	DefaultIdleTTL = 10 * time.Minute
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerUser holds one token bucket per user id. Safe for concurrent use.
type PerUser struct {
	mu      sync.Mutex
	users   map[int64]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// NewPerUser returns a limiter allowing rps sustained submissions with
// bursts of burst. Non-positive values take the defaults.
func NewPerUser(rps float64, burst int) *PerUser {
	if rps <= 0 {
		rps = DefaultRPS
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &PerUser{
		users:   make(map[int64]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
	}
}

// Allow reports whether userID may submit now, consuming a token if so.
func (p *PerUser) Allow(userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	e, ok := p.users[userID]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.users[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// SetIdleTTL changes how long an unused limiter is kept. Non-positive
// values are ignored.
func (p *PerUser) SetIdleTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	p.mu.Lock()
	p.idleTTL = ttl
	p.mu.Unlock()
}

// Sweep drops limiters idle for longer than the idle TTL and returns how
// many were removed. A dropped user starts again with a full bucket.
func (p *PerUser) Sweep() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-p.idleTTL)
	removed := 0
	for id, e := range p.users {
		if e.lastSeen.Before(cutoff) {
			delete(p.users, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (p *PerUser) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = p.idleTTL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep()
		}
	}
}

// Len is the number of tracked users.
func (p *PerUser) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}
