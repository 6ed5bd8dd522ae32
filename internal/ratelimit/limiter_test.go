package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(rps float64, burst int) (*PerUser, *clock) {
	c := &clock{t: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}
	p := NewPerUser(rps, burst)
	p.now = c.now
	return p, c
}

func TestAllow_BurstThenRefill(t *testing.T) {
	t.Parallel()

	p, c := newTestLimiter(1, 3)

	for i := range 3 {
		assert.True(t, p.Allow(1), "request %d", i)
	}
	assert.False(t, p.Allow(1))

	c.advance(time.Second)
	assert.True(t, p.Allow(1))
	assert.False(t, p.Allow(1))
}

func TestAllow_UsersAreIndependent(t *testing.T) {
	t.Parallel()

	p, _ := newTestLimiter(1, 1)
	assert.True(t, p.Allow(1))
	assert.False(t, p.Allow(1))
	assert.True(t, p.Allow(2))
	assert.Equal(t, 2, p.Len())
}

func TestSweep(t *testing.T) {
	t.Parallel()

	p, c := newTestLimiter(1, 1)
	p.Allow(1)
	c.advance(DefaultIdleTTL / 2)
	p.Allow(2)
	c.advance(DefaultIdleTTL/2 + time.Second)

	assert.Equal(t, 1, p.Sweep())
	assert.Equal(t, 1, p.Len())
	assert.True(t, p.Allow(1), "swept user starts with a full bucket")
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	p := NewPerUser(0, 0)
	assert.InDelta(t, DefaultRPS, float64(p.limit), 0)
	assert.Equal(t, DefaultBurst, p.burst)
}

func TestSetIdleTTL(t *testing.T) {
	t.Parallel()

	p, c := newTestLimiter(1, 1)
	p.SetIdleTTL(time.Minute)
	p.SetIdleTTL(0)
	p.Allow(1)
	c.advance(2 * time.Minute)

	assert.Equal(t, 1, p.Sweep())
}
