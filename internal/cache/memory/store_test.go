package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haianibrahim/tiktok-scraper/internal/cache/memory"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewStore(newFakeClock())

	_, ok := s.Get(ctx, "k")
	assert.False(t, ok)

	s.Put(ctx, "k", []byte("value"), time.Hour)
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)
}

func TestGetReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewStore(newFakeClock())

	original := []byte("value")
	s.Put(ctx, "k", original, time.Hour)
	original[0] = 'X'

	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got, "stored bytes are isolated from the caller's slice")

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, []byte("value"), again)
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	s := memory.NewStore(clock)

	s.Put(ctx, "k", []byte("v"), time.Minute)

	clock.Advance(59 * time.Second)
	_, ok := s.Get(ctx, "k")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = s.Get(ctx, "k")
	assert.False(t, ok, "expired entries behave as absent")
}

func TestForget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := newFakeClock()
	s := memory.NewStore(clock)

	assert.False(t, s.Forget(ctx, "k"), "nothing to forget")

	s.Put(ctx, "k", []byte("v"), time.Minute)
	assert.True(t, s.Forget(ctx, "k"))
	assert.False(t, s.Forget(ctx, "k"))

	// Forgetting an expired entry removes it but reports false.
	s.Put(ctx, "k", []byte("v"), time.Minute)
	clock.Advance(2 * time.Minute)
	assert.False(t, s.Forget(ctx, "k"))
	assert.Equal(t, 0, s.Len())
}

func TestFlush(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewStore(newFakeClock())

	s.Put(ctx, "a", []byte("1"), time.Hour)
	s.Put(ctx, "b", []byte("2"), time.Hour)
	require.Equal(t, 2, s.Len())

	s.Flush(ctx)
	assert.Equal(t, 0, s.Len())
	_, ok := s.Get(ctx, "a")
	assert.False(t, ok)
}

func TestOverwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := memory.NewStore(newFakeClock())

	s.Put(ctx, "k", []byte("old"), time.Hour)
	s.Put(ctx, "k", []byte("new"), time.Hour)
	got, ok := s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
	assert.Equal(t, 1, s.Len())
}
