package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"golang.org/x/time/rate"
)

// submissionGuard throttles public form submissions per client and drops
// repeats of the same submission. It keeps its counters in the shared cache
// and falls back to process memory when no cache is configured.
type submissionGuard struct {
	prefix      string
	limit       int
	window      time.Duration
	dedupWindow time.Duration
	cache       providers.CacheProvider
	local       *localRateLimiter
	deduper     *localDeduper
}

func newSubmissionGuard(prefix string, limit int, window, dedupWindow time.Duration, cache providers.CacheProvider) *submissionGuard {
	return &submissionGuard{
		prefix:      prefix,
		limit:       limit,
		window:      window,
		dedupWindow: dedupWindow,
		cache:       cache,
		local:       newLocalRateLimiter(),
		deduper:     newLocalDeduper(),
	}
}

// allow counts one request from client and reports whether it is within
// the limit, with the wait before the next attempt when it is not.
func (g *submissionGuard) allow(ctx context.Context, client string) (bool, time.Duration) {
	key := g.prefix + ":rate:" + client
	if g.cache == nil {
		return g.local.allow(key, g.limit, g.window)
	}

	count, ttl, err := g.cache.Increment(ctx, key, int(g.window.Seconds()))
	if err != nil {
		// A cache outage falls back to the in-process limiter.
		return g.local.allow(key, g.limit, g.window)
	}
	if count > int64(g.limit) {
		if ttl <= 0 {
			ttl = g.window
		}
		return false, ttl
	}
	return true, g.window
}

// duplicate reports whether fingerprint was already seen inside the dedupe
// window, and records it otherwise.
func (g *submissionGuard) duplicate(ctx context.Context, fingerprint string) bool {
	key := g.prefix + ":dup:" + fingerprint
	if g.cache == nil {
		return g.deduper.seen(key, g.dedupWindow)
	}

	exists, err := g.cache.Exists(ctx, key)
	if err == nil && exists {
		return true
	}

	_ = g.cache.Set(ctx, key, []byte("1"), int(g.dedupWindow.Seconds()))
	return false
}

// sweepInterval bounds how often idle local entries are dropped.
const sweepInterval = time.Minute

// localRateLimiter keeps one token bucket per key, refilled so that limit
// requests fit in each window. Buckets that have refilled completely are
// indistinguishable from new ones and are swept.
type localRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSweep time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		lastSweep: time.Now(),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweepLocked(now)
	}
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	reservation := limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, window
}

func (l *localRateLimiter) sweepLocked(now time.Time) {
	for key, limiter := range l.limiters {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

type localDeduper struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	lastSweep time.Time
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{
		entries:   make(map[string]time.Time),
		lastSweep: time.Now(),
	}
}

func (d *localDeduper) seen(key string, window time.Duration) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Sub(d.lastSweep) >= sweepInterval {
		for k, expiresAt := range d.entries {
			if !now.Before(expiresAt) {
				delete(d.entries, k)
			}
		}
		d.lastSweep = now
	}

	if expiresAt, ok := d.entries[key]; ok && now.Before(expiresAt) {
		return true
	}

	d.entries[key] = now.Add(window)
	return false
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
