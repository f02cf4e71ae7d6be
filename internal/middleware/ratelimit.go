package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter enforces a fixed-window per-client request budget. Windows are
// keyed by client IP and reset a minute after their first request.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*clientWindow
}

type clientWindow struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per client IP.
// A non-positive limit disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		limit:   perMinute,
		window:  time.Minute,
		clients: make(map[string]*clientWindow),
	}
}

// Handler wraps next with the rate limit check.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		if !l.allow(clientIP(r)) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"success":false,"error":"rate limit exceeded"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	cw, ok := l.clients[key]
	if !ok || now.After(cw.resetAt) {
		l.clients[key] = &clientWindow{count: 1, resetAt: now.Add(l.window)}
		l.sweep(now)
		return true
	}
	if cw.count >= l.limit {
		return false
	}
	cw.count++
	return true
}

// sweep drops expired windows so the map does not grow without bound. Called
// with the lock held.
func (l *RateLimiter) sweep(now time.Time) {
	if len(l.clients) < 1024 {
		return
	}
	for key, cw := range l.clients {
		if now.After(cw.resetAt) {
			delete(l.clients, key)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
