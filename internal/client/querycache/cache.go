// Package querycache memoizes read queries against the API.
//
// Entries are keyed by string and are fresh for a configurable stale time.
// Concurrent queries for the same key share one fetch. Invalidating a key
// while its fetch is in flight discards that fetch's result.
package querycache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/familyorganizer/internal/client/api"
	"github.com/dmitrijs2005/familyorganizer/internal/logging"
)

const (
	RecipeKeyAll = "recipes"

	DefaultStaleTime = 30 * time.Second
	DefaultRetries   = 1
	DefaultBackoff   = 250 * time.Millisecond
)

// RecipeKey is the key of a single recipe query.
func RecipeKey(id int64) string {
	return RecipeKeyAll + "/" + strconv.FormatInt(id, 10)
}

type entry struct {
	value     any
	fetchedAt time.Time
}

type Cache struct {
	staleTime time.Duration
	retries   uint64
	backoff   time.Duration
	retryIf   func(error) bool
	now       func() time.Time
	logger    logging.Logger

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
	epochs  map[string]uint64
}

type Option func(*Cache)

// WithStaleTime sets how long a fetched value is served without refetching.
// Zero means every query fetches.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithRetry sets the retry count and the constant backoff between attempts.
func WithRetry(retries uint64, backoff time.Duration) Option {
	return func(c *Cache) {
		c.retries = retries
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// WithRetryIf overrides which errors are retried. The default retries
// network failures and server faults only.
func WithRetryIf(fn func(error) bool) Option {
	return func(c *Cache) { c.retryIf = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		staleTime: DefaultStaleTime,
		retries:   DefaultRetries,
		backoff:   DefaultBackoff,
		retryIf:   api.Retryable,
		now:       time.Now,
		logger:    logging.Nop(),
		entries:   make(map[string]entry),
		epochs:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns the cached value for key when fresh, otherwise runs fetch.
// A value cached under key with a different type is treated as a miss.
func Query[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			c.logger.Debug(ctx, "cache hit", "key", key)
			return typed, nil
		}
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		epoch := c.epoch(key)
		val, err := c.fetchWithRetry(ctx, func(ctx context.Context) (any, error) {
			return fetch(ctx)
		})
		if err != nil {
			return nil, err
		}
		c.store(key, epoch, val)
		return val, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		c.logger.Debug(ctx, "cache fetch shared", "key", key)
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: key %q holds %T", key, v)
	}
	return typed, nil
}

func (c *Cache) fetchWithRetry(ctx context.Context, fetch func(context.Context) (any, error)) (any, error) {
	var out any
	b := retry.WithMaxRetries(c.retries, retry.NewConstant(c.backoff))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		v, err := fetch(ctx)
		if err != nil {
			if c.retryIf(err) {
				c.logger.Debug(ctx, "query failed, retrying", "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.staleTime {
		return nil, false
	}
	return e.value, true
}

// epoch registers key so a later Clear also reaches fetches in flight.
func (c *Cache) epoch(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.epochs[key]
	if !ok {
		c.epochs[key] = 0
	}
	return e
}

func (c *Cache) store(key string, epoch uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epochs[key] != epoch {
		return
	}
	c.entries[key] = entry{value: v, fetchedAt: c.now()}
}

// Invalidate drops the given keys. Fetches already in flight for them will
// not populate the cache.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		c.invalidateLocked(k)
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.group.Forget(k)
	}
}

// InvalidatePrefix drops every key equal to prefix or below it ("prefix/...").
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	var keys []string
	for k := range c.entries {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			keys = append(keys, k)
		}
	}
	for k := range c.epochs {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			keys = append(keys, k)
		}
	}
	keys = append(keys, prefix)
	for _, k := range keys {
		c.invalidateLocked(k)
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.group.Forget(k)
	}
}

func (c *Cache) invalidateLocked(key string) {
	delete(c.entries, key)
	c.epochs[key]++
}

// Clear drops everything, e.g. after logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries)+len(c.epochs))
	for k := range c.entries {
		keys = append(keys, k)
	}
	for k := range c.epochs {
		keys = append(keys, k)
	}
	for _, k := range keys {
		c.invalidateLocked(k)
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.group.Forget(k)
	}
}

// Len reports the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
