package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	_, _ = c.Get("a")
	c.Set("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2023, 10, 30, 8, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("report", 5)
	now = now.Add(30 * time.Second)
	_, ok := c.Get("report")
	assert.True(t, ok)

	c.Set("other", 1)
	now = now.Add(45 * time.Second)
	_, ok = c.Get("report")
	assert.False(t, ok, "entry should expire after ttl")
	assert.Equal(t, 0, c.CleanExpired(), "other has not expired yet")

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Zero(t, c.Size())
}

func TestLRUCache_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[int](1, 0)
	c.now = func() time.Time { return now }
	c.Set("k", 1)
	now = now.Add(24 * time.Hour)
	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestLRUCache_PurgeAndDelete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Purge()
	assert.Zero(t, c.Size())
	c.Set("c", 3)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_GetOrLoad(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	var calls atomic.Int32

	load := func() (int, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := c.GetOrLoad("report", load)
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load(), "concurrent misses share one load")

	v, hit, err := c.GetOrLoad("report", load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
}

func TestLRUCache_GetOrLoadErrorNotCached(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	boom := errors.New("boom")

	_, _, err := c.GetOrLoad("k", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Size())
}

func TestManager_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	now := time.Now()
	c := NewLRUCache[int](4, time.Millisecond)
	c.now = func() time.Time { return now }
	c.Set("k", 1)
	now = now.Add(time.Second)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)

	require.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop()
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager()
	m.Stop()
}
