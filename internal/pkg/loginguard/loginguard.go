// Package loginguard throttles repeated failed logins per email and client address.
package loginguard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard counts failed logins inside a sliding window.
type Guard interface {
	// Allowed reports whether key may attempt another login.
	Allowed(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt for key.
	Fail(ctx context.Context, key string) error
	// Reset forgets key after a successful login.
	Reset(ctx context.Context, key string) error
}

// Key builds the guard key for an email and client address.
func Key(email, clientIP string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "|" + clientIP
}

// RedisGuard keeps counters in Redis so that several instances share them.
type RedisGuard struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	prefix      string
}

// NewRedisGuard wraps an existing client.
func NewRedisGuard(client *redis.Client, maxAttempts int, window time.Duration) *RedisGuard {
	return &RedisGuard{client: client, maxAttempts: maxAttempts, window: window, prefix: "coursehub:login:"}
}

// Allowed implements Guard.
func (g *RedisGuard) Allowed(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Get(ctx, g.prefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read login attempts: %w", err)
	}
	return n < g.maxAttempts, nil
}

// Fail implements Guard. The window starts at the first failure.
func (g *RedisGuard) Fail(ctx context.Context, key string) error {
	pipe := g.client.TxPipeline()
	pipe.Incr(ctx, g.prefix+key)
	pipe.ExpireNX(ctx, g.prefix+key, g.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

// Reset implements Guard.
func (g *RedisGuard) Reset(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

type entry struct {
	count   int
	expires time.Time
}

// MemoryGuard is the single-instance fallback used when Redis is not configured.
type MemoryGuard struct {
	mu          sync.Mutex
	entries     map[string]entry
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	nextSweep   time.Time
}

// NewMemoryGuard creates an in-process guard.
func NewMemoryGuard(maxAttempts int, window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		entries:     make(map[string]entry),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Allowed implements Guard.
func (g *MemoryGuard) Allowed(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok {
		return true, nil
	}
	if !g.now().Before(e.expires) {
		delete(g.entries, key)
		return true, nil
	}
	return e.count < g.maxAttempts, nil
}

// Fail implements Guard.
func (g *MemoryGuard) Fail(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweep(now)
	e, ok := g.entries[key]
	if !ok || !now.Before(e.expires) {
		e = entry{expires: now.Add(g.window)}
	}
	e.count++
	g.entries[key] = e
	return nil
}

// sweep drops expired entries at most once per window. Caller holds g.mu.
func (g *MemoryGuard) sweep(now time.Time) {
	if now.Before(g.nextSweep) {
		return
	}
	for k, e := range g.entries {
		if !now.Before(e.expires) {
			delete(g.entries, k)
		}
	}
	g.nextSweep = now.Add(g.window)
}

// Reset implements Guard.
func (g *MemoryGuard) Reset(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}
