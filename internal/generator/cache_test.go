package generator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(clock *fakeClock) *Cache {
	c := NewCache(0, 0)
	c.now = clock.Now
	return c
}

func TestCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(clock)
	c.Set("fp", &Result{DataURL: "data:x"})

	clock.Advance(DefaultCacheTTL - time.Millisecond)
	r, ok := c.Get("fp")
	require.True(t, ok)
	assert.Equal(t, "data:x", r.DataURL)

	clock.Advance(time.Millisecond)
	_, ok = c.Get("fp")
	assert.False(t, ok, "entry must be absent at T+5m")
	assert.Equal(t, 0, c.Len(), "expired entry is deleted on lookup")
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache(time.Minute, 10)
	c.Set("fp", &Result{DataURL: "a"})

	r, _ := c.Get("fp")
	r.DataURL = "mutated"

	again, _ := c.Get("fp")
	assert.Equal(t, "a", again.DataURL)
}

func TestCacheSweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCache(clock)

	for i := range DefaultSweepThreshold {
		c.Set(fmt.Sprintf("old-%d", i), &Result{})
	}
	assert.Equal(t, DefaultSweepThreshold, c.Len())

	// Nothing has expired yet: growing past the threshold keeps everything.
	c.Set("live", &Result{})
	assert.Equal(t, DefaultSweepThreshold+1, c.Len())

	clock.Advance(DefaultCacheTTL)
	c.Set("fresh", &Result{})
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCacheClear(t *testing.T) {
	c := NewCache(time.Minute, 10)
	c.Set("a", &Result{})
	c.Set("b", &Result{})
	c.Clear()
	assert.Equal(t, 0, c.Len())
}
