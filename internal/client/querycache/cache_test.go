package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/familyorganizer/internal/client/api"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(clock *fakeClock, opts ...Option) *Cache {
	base := []Option{
		WithClock(clock.Now),
		WithStaleTime(time.Minute),
		WithRetry(1, time.Millisecond),
	}
	return New(append(base, opts...)...)
}

func counting(v []string) (func(context.Context) ([]string, error), *atomic.Int32) {
	var n atomic.Int32
	return func(context.Context) ([]string, error) {
		n.Add(1)
		return v, nil
	}, &n
}

func TestRecipeKey(t *testing.T) {
	assert.Equal(t, "recipes", RecipeKeyAll)
	assert.Equal(t, "recipes/42", RecipeKey(42))
}

func TestQuery_CachesWhileFresh(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := newTestCache(clock)
	fetch, n := counting([]string{"a"})

	for i := 0; i < 3; i++ {
		v, err := Query(context.Background(), c, "k", fetch)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, v)
	}
	assert.EqualValues(t, 1, n.Load())

	clock.Advance(time.Minute)
	_, err := Query(context.Background(), c, "k", fetch)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n.Load())
}

func TestQuery_ZeroStaleTimeAlwaysFetches(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := newTestCache(clock, WithStaleTime(0))
	fetch, n := counting(nil)

	_, _ = Query(context.Background(), c, "k", fetch)
	_, _ = Query(context.Background(), c, "k", fetch)
	assert.EqualValues(t, 2, n.Load())
}

func TestQuery_RetriesTransientOnce(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Unix(0, 0)})

	var calls atomic.Int32
	v, err := Query(context.Background(), c, "k", func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, &api.Error{Kind: api.KindHTTP, Status: 503}
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.EqualValues(t, 2, calls.Load())
}

func TestQuery_GivesUpAfterOneRetry(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Unix(0, 0)})

	var calls atomic.Int32
	_, err := Query(context.Background(), c, "k", func(context.Context) (int, error) {
		calls.Add(1)
		return 0, &api.Error{Kind: api.KindNetwork, Err: errors.New("refused")}
	})
	require.ErrorIs(t, err, api.ErrUnavailable)
	assert.EqualValues(t, 2, calls.Load())
	assert.Zero(t, c.Len())
}

func TestQuery_DoesNotRetryClientErrors(t *testing.T) {
	for _, status := range []int{401, 403, 404} {
		c := newTestCache(&fakeClock{now: time.Unix(0, 0)})

		var calls atomic.Int32
		_, err := Query(context.Background(), c, "k", func(context.Context) (int, error) {
			calls.Add(1)
			return 0, &api.Error{Kind: api.KindHTTP, Status: status}
		})
		require.Error(t, err)
		assert.EqualValues(t, 1, calls.Load(), "status %d", status)
	}
}

func TestQuery_DeduplicatesConcurrentFetches(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Unix(0, 0)})

	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32
	fetch := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 1, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = Query(context.Background(), c, "k", fetch)
	}()
	<-started
	for i := 1; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Query(context.Background(), c, "k", fetch)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, []int{1, 1, 1, 1, 1}, results)
}

func TestInvalidate_RacingFetchIsDiscarded(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Unix(0, 0)})

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Query(context.Background(), c, RecipeKeyAll, func(context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	c.Invalidate(RecipeKeyAll)
	close(release)
	<-done

	assert.Zero(t, c.Len())

	v, err := Query(context.Background(), c, RecipeKeyAll, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestClear_RacingFetchIsDiscarded(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Unix(0, 0)})

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Query(context.Background(), c, "k", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()

	<-started
	c.Clear()
	close(release)
	<-done

	assert.Zero(t, c.Len())
}

func TestInvalidatePrefix(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Unix(0, 0)})
	ctx := context.Background()

	for _, k := range []string{RecipeKeyAll, RecipeKey(1), RecipeKey(2), "recipesx", "users"} {
		_, err := Query(ctx, c, k, func(context.Context) (int, error) { return 1, nil })
		require.NoError(t, err)
	}
	require.Equal(t, 5, c.Len())

	c.InvalidatePrefix(RecipeKeyAll)
	assert.Equal(t, 2, c.Len())

	_, hit := c.lookup("recipesx")
	assert.True(t, hit)
	_, hit = c.lookup("users")
	assert.True(t, hit)
}

func TestQuery_TypeMismatchRefetches(t *testing.T) {
	c := newTestCache(&fakeClock{now: time.Unix(0, 0)})
	ctx := context.Background()

	_, err := Query(ctx, c, "k", func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	s, err := Query(ctx, c, "k", func(context.Context) (string, error) { return "x", nil })
	require.NoError(t, err)
	assert.Equal(t, "x", s)
}
