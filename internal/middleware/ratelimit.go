// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// sweepInterval is how often idle keys are dropped.
const sweepInterval = 5 * time.Minute

// KeyFunc selects the bucket a request counts against.
type KeyFunc func(r *http.Request) string

// ByClient counts requests per client IP.
func ByClient(r *http.Request) string { return ClientIP(r) }

// RateLimiter allows at most limit requests per key within a sliding
// window. Each route family gets its own named limiter, so login attempts
// and comment posts are counted separately.
type RateLimiter struct {
	name   string
	limit  int
	window time.Duration
	key    KeyFunc
	now    func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time // oldest first

	stopCh chan struct{}
	once   sync.Once
}

// NewRateLimiter creates a limiter named name (used in logs) that allows
// limit requests per window for each key. A nil key counts per client IP.
// It starts a goroutine that drops idle keys until Stop.
func NewRateLimiter(name string, limit int, window time.Duration, key KeyFunc) *RateLimiter {
	if key == nil {
		key = ByClient
	}
	rl := &RateLimiter{
		name:   name,
		limit:  limit,
		window: window,
		key:    key,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
		stopCh: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop ends the cleanup goroutine. Safe to call twice.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// allow counts a request for key. Over the limit it returns false and the
// time until the oldest counted request leaves the window.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	hits := expire(rl.hits[key], now.Add(-rl.window))
	if len(hits) >= rl.limit {
		rl.hits[key] = hits
		return false, hits[0].Add(rl.window).Sub(now)
	}
	rl.hits[key] = append(hits, now)
	return true, 0
}

// expire drops hits at or before cutoff.
func expire(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// cleanup removes keys with no request inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, hits := range rl.hits {
		if len(expire(hits, cutoff)) == 0 {
			delete(rl.hits, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// of whole seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(rl.key(r))
		if !ok {
			secs := max(int(math.Ceil(wait.Seconds())), 1)
			slog.Warn("rate limit exceeded",
				"limiter", rl.name,
				"remote", ClientIP(r),
				"path", r.URL.Path,
				"retry_after", secs,
			)
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the visitor's address: the first X-Forwarded-For hop,
// then X-Real-IP, then the connection's remote host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
