package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLRU(size int, ttl time.Duration) (*LRU[string], *clock) {
	clk := &clock{t: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}
	c := NewLRU[string](size, ttl)
	c.now = clk.now
	return c, clk
}

func TestLRU_GetSet(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)

	_, ok := c.Get("fees")
	assert.False(t, ok)

	c.Set("fees", "a")
	v, ok := c.Get("fees")
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	c.Set("fees", "b")
	v, _ = c.Get("fees")
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, c.Size())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestLRU(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRU_Expiry(t *testing.T) {
	c, clk := newTestLRU(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clk.advance(30 * time.Second)
	c.Set("c", "3")
	clk.advance(30 * time.Second)

	_, ok := c.Get("a")
	assert.False(t, ok, "an entry expires exactly at its ttl")
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 1, c.Size())

	j := NewJanitor(nil)
	j.Register(c)
	clk.advance(time.Minute)
	assert.Equal(t, 1, j.Sweep())
	assert.Zero(t, c.Size())
}

func TestLRU_DeleteAndPurge(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 1, c.Size())

	c.Purge()
	assert.Zero(t, c.Size())
	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestLRU_GetOrLoad(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "fees", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrLoad(ctx, "list", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	// give the goroutines a chance to pile up on the same key
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, v := range results {
		assert.Equal(t, "fees", v)
	}
	assert.LessOrEqual(t, calls.Load(), int32(2))

	before := calls.Load()
	_, err := c.GetOrLoad(ctx, "list", load)
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load(), "served from cache")
}

func TestLRU_GetOrLoadErrorNotCached(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)
	boom := errors.New("db down")

	_, err := c.GetOrLoad(context.Background(), "list", func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Size())
}

func TestNewLRU_MinimumSize(t *testing.T) {
	c := NewLRU[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 1, c.Size())
}

func TestLRU_PurgeDuringLoadDropsResult(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)
	go func() {
		v, err := c.GetOrLoad(ctx, "fees", func(context.Context) (string, error) {
			close(started)
			<-release
			return "before-write", nil
		})
		assert.NoError(t, err)
		done <- v
	}()
	<-started

	c.Purge()

	// a reader after the write must not join the older load
	v, err := c.GetOrLoad(ctx, "fees", func(context.Context) (string, error) {
		return "after-write", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after-write", v)

	close(release)
	assert.Equal(t, "before-write", <-done)

	got, ok := c.Get("fees")
	require.True(t, ok)
	assert.Equal(t, "after-write", got)
}

func TestLRU_PurgeDuringLoadLeavesCacheEmpty(t *testing.T) {
	c, _ := newTestLRU(10, time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.GetOrLoad(context.Background(), "fees", func(context.Context) (string, error) {
			close(started)
			<-release
			return "before-write", nil
		})
	}()
	<-started
	c.Purge()
	close(release)
	<-done

	_, ok := c.Get("fees")
	assert.False(t, ok)
}
