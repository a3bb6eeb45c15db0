// Package ratelimit throttles repeated requests from the same client.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result contains the result of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

// Limiter decides whether one more request for key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
	Reset(ctx context.Context, key string) error
}

// slidingWindow removes expired hits, then records the new one if it fits.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)
	if current < limit then
		local counter = redis.call('INCR', key .. ':counter')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		local expire_seconds = math.ceil(window_ms / 1000)
		redis.call('EXPIRE', key, expire_seconds)
		redis.call('EXPIRE', key .. ':counter', expire_seconds)
		return {1, limit - current - 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local reset_at = 0
	if oldest and #oldest >= 2 then
		reset_at = tonumber(oldest[2]) + window_ms
	end
	return {0, 0, reset_at}
`)

// RedisLimiter implements a sliding window shared by every instance using
// the same Redis.
type RedisLimiter struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisLimiter(client *redis.Client, keyPrefix string) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	result, err := slidingWindow.Run(ctx, l.client, []string{l.keyPrefix + key},
		now.UnixMilli(), windowStart.UnixMilli(), limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis script error: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("unexpected Redis response length: %d", len(result))
	}

	resetAt := now.Add(window)
	if result[2] > 0 {
		resetAt = time.UnixMilli(result[2])
	}

	return &Result{
		Allowed:   result[0] == 1,
		Remaining: int(result[1]),
		ResetAt:   resetAt,
		Limit:     limit,
	}, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	redisKey := l.keyPrefix + key
	return l.client.Del(ctx, redisKey, redisKey+":counter").Err()
}

// MemoryLimiter keeps the same sliding window in process memory. It is used
// when no Redis is configured. Keys whose hits have all expired are dropped,
// on the next Allow for that key or by Prune.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time

	janitor  bool
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type memoryWindow struct {
	hits   []time.Time
	window time.Duration
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows:  make(map[string]*memoryWindow),
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.unexpired(key, now.Add(-window))

	if len(kept) >= limit {
		resetAt := now.Add(window)
		if len(kept) > 0 {
			resetAt = kept[0].Add(window)
			l.windows[key] = &memoryWindow{hits: kept, window: window}
		}
		return &Result{Allowed: false, ResetAt: resetAt, Limit: limit}, nil
	}

	kept = append(kept, now)
	l.windows[key] = &memoryWindow{hits: kept, window: window}
	return &Result{
		Allowed:   true,
		Remaining: limit - len(kept),
		ResetAt:   kept[0].Add(window),
		Limit:     limit,
	}, nil
}

// unexpired returns the hits of key after windowStart and forgets the key
// when none are left. Callers hold l.mu.
func (l *MemoryLimiter) unexpired(key string, windowStart time.Time) []time.Time {
	entry, ok := l.windows[key]
	if !ok {
		return nil
	}

	kept := entry.hits[:0]
	for _, hit := range entry.hits {
		if hit.After(windowStart) {
			kept = append(kept, hit)
		}
	}
	if len(kept) == 0 {
		delete(l.windows, key)
		return nil
	}
	return kept
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Prune drops every key whose hits have all left their window and returns
// how many were removed.
func (l *MemoryLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, entry := range l.windows {
		if len(entry.hits) == 0 || !entry.hits[len(entry.hits)-1].After(now.Add(-entry.window)) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of keys currently tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// StartJanitor prunes expired keys every interval until Stop is called.
func (l *MemoryLimiter) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	l.mu.Lock()
	if l.janitor {
		l.mu.Unlock()
		return
	}
	l.janitor = true
	l.mu.Unlock()

	go func() {
		defer close(l.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := l.Prune(); removed > 0 {
					log.Printf("[RateLimit] Pruned %d idle keys", removed)
				}
			case <-l.stopChan:
				return
			}
		}
	}()
}

// Stop ends the janitor started by StartJanitor and waits for it, or for
// ctx. It is a no-op when no janitor runs.
func (l *MemoryLimiter) Stop(ctx context.Context) error {
	l.mu.Lock()
	started := l.janitor
	l.mu.Unlock()

	l.stopOnce.Do(func() { close(l.stopChan) })
	if !started {
		return nil
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
