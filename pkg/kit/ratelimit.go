package kit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by an arbitrary request key
// (client IP for session issuing, session id for cart mutations).
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	key    func(*http.Request) string
	hits   map[string][]time.Time

	lastSweep time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiter(limit, window, ClientIP)
}

func NewRateLimiter(limit int, window time.Duration, key func(*http.Request) string) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		key:    key,
		hits:   make(map[string][]time.Time),
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		if l.recordAndCheck(l.key(r), now, now.Add(-l.window)) {
			WriteError(w, r, http.StatusTooManyRequests, "too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) recordAndCheck(key string, now, cutoff time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	ts := prune(l.hits[key], cutoff)

	if len(ts) >= l.limit {
		l.hits[key] = ts
		return true
	}

	l.hits[key] = append(ts, now)
	return false
}

// sweep drops keys with no hits inside the window, so one-off clients and
// abandoned sessions do not accumulate.
func (l *RateLimiter) sweep(cutoff time.Time) {
	for k, ts := range l.hits {
		if ts = prune(ts, cutoff); len(ts) == 0 {
			delete(l.hits, k)
		} else {
			l.hits[k] = ts
		}
	}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	n := 0
	for _, t := range ts {
		if t.After(cutoff) {
			ts[n] = t
			n++
		}
	}
	return ts[:n]
}

func ClientIP(r *http.Request) string {
	if ip := firstForwardedFor(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}

	return r.RemoteAddr
}

// SessionOrIP keys by the gateway-injected session id, falling back to the client IP.
func SessionOrIP(r *http.Request) string {
	if sid := r.Header.Get(SessionHeader); sid != "" {
		return "s:" + sid
	}
	return "ip:" + ClientIP(r)
}

func firstForwardedFor(xff string) string {
	if xff == "" {
		return ""
	}

	first, _, _ := strings.Cut(xff, ",")
	return strings.TrimSpace(first)
}
