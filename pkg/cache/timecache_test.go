package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock advances only when told to, so expiry is deterministic.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(t *testing.T) (*TimeCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	logger, _ := zap.NewDevelopment()
	return NewTimeCache(clock.Now, logger), clock
}

func TestTimeCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t)

	ok := c.Set("quote-tokens", "value", time.Minute)
	require.True(t, ok)

	got, found := c.Get("quote-tokens")
	require.True(t, found)
	assert.Equal(t, "value", got)
}

func TestTimeCache_GetMissing(t *testing.T) {
	c, _ := newTestCache(t)

	_, found := c.Get("nonexistent")
	assert.False(t, found)
}

func TestTimeCache_ExpiryEvictsLazily(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("market:7", 42, time.Minute)

	clock.Advance(time.Minute) // exactly at expiry: stale

	_, found := c.Get("market:7")
	assert.False(t, found)
	assert.Equal(t, 0, c.Len(), "expired entry must be evicted by the read")
}

func TestTimeCache_NotExpiredJustBefore(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("market:7", 42, time.Minute)
	clock.Advance(time.Minute - time.Nanosecond)

	got, found := c.Get("market:7")
	require.True(t, found)
	assert.Equal(t, 42, got)
}

func TestTimeCache_RefreshOverwritesExpiry(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", "old", time.Minute)
	clock.Advance(30 * time.Second)
	c.Set("k", "new", time.Minute)
	clock.Advance(45 * time.Second)

	got, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, "new", got)
}

func TestTimeCache_Cleanup(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Hour)
	clock.Advance(2 * time.Minute)

	c.Cleanup()

	assert.Equal(t, 1, c.Len())
	_, found := c.Get("b")
	assert.True(t, found)
}

func TestTimeCache_ZeroTTLIsNoop(t *testing.T) {
	c, _ := newTestCache(t)

	ok := c.Set("k", "v", 0)
	assert.False(t, ok)

	_, found := c.Get("k")
	assert.False(t, found)
}

func TestTimeCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	_, found := c.Get("a")
	assert.False(t, found)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
