package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultWindow = 60 * time.Second
	DefaultMax    = 5
)

// Config holds per-limiter fixed window settings.
type Config struct {
	Window time.Duration
	Max    int
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Max <= 0 {
		c.Max = DefaultMax
	}
	return c
}

// sharedStore is the subset of redis commands the limiter uses.
type sharedStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Limiter is a named fixed-window counter shared across service instances
// through redis. When the shared store is unavailable it degrades to a
// local in-memory counter instead of failing the calling request.
type Limiter struct {
	name  string
	cfg   Config
	rdb   sharedStore
	local *localStore

	errorLog *log.Logger

	mu       sync.Mutex
	degraded bool
}

// New constructs a limiter. rdb may be nil, in which case only the local
// counter is used.
func New(name string, cfg Config, rdb *redis.Client, errorLog *log.Logger) *Limiter {
	l := &Limiter{
		name:     name,
		cfg:      cfg.withDefaults(),
		local:    newLocalStore(),
		errorLog: errorLog,
	}
	if rdb != nil {
		l.rdb = rdb
	}
	return l
}

// Admit reports whether the caller identified by callerKey is within the
// window budget. It never returns an error: storage failures fall back to
// the local counter.
func (l *Limiter) Admit(ctx context.Context, callerKey string) bool {
	if callerKey == "" {
		callerKey = "unknown"
	}
	if l.rdb != nil {
		allowed, err := l.admitShared(ctx, callerKey)
		if err == nil {
			l.setDegraded(false)
			return allowed
		}
		if l.setDegraded(true) && l.errorLog != nil {
			l.errorLog.Printf("ratelimit %s: shared store unavailable, using local counters: %v", l.name, err)
		}
	}
	return l.local.admit(callerKey, l.cfg, time.Now())
}

func (l *Limiter) admitShared(ctx context.Context, callerKey string) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", l.name, callerKey)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.rdb.PExpire(ctx, key, l.cfg.Window).Err(); err != nil {
			// a counter with no TTL never resets; drop it before falling back
			l.rdb.Del(ctx, key)
			return false, err
		}
	}
	return count <= int64(l.cfg.Max), nil
}

// setDegraded flips the degradation flag and reports whether it changed to
// true, so the fallback is logged once per outage rather than per request.
func (l *Limiter) setDegraded(v bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	changed := v && !l.degraded
	l.degraded = v
	return changed
}

// SweepLocal drops expired local windows. Correctness does not depend on
// timely eviction, only memory growth does.
func (l *Limiter) SweepLocal(now time.Time) int {
	return l.local.sweep(now)
}

type localEntry struct {
	count   int
	resetAt time.Time
}

type localStore struct {
	mu      sync.Mutex
	entries map[string]*localEntry
}

func newLocalStore() *localStore {
	return &localStore{entries: make(map[string]*localEntry)}
}

func (s *localStore) admit(key string, cfg Config, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		s.entries[key] = &localEntry{count: 1, resetAt: now.Add(cfg.Window)}
		return true
	}
	e.count++
	return e.count <= cfg.Max
}

func (s *localStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// ClientKey normalizes the caller identity for rate limiting: the first
// entry of a forwarded-for chain when present, otherwise the remote host.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
