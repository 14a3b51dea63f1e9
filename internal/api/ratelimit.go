// Per-IP limiter for the simulation control endpoints. Fixed windows rather
// than a refilling bucket: control traffic is bursty and coarse is enough.
package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows at most burst requests per client IP in each window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	burst   int
	window  time.Duration
}

type clientWindow struct {
	remaining int
	openedAt  time.Time
}

// NewRateLimiter creates a limiter and starts its background sweep.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		burst:   burst,
		window:  window,
	}
	go rl.sweep()
	return rl
}

// Allow consumes one request slot for ip. When the limit is hit it returns
// false plus the seconds until the client's window reopens.
func (rl *RateLimiter) Allow(ip string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[ip]
	if !ok || now.Sub(c.openedAt) >= rl.window {
		rl.clients[ip] = &clientWindow{remaining: rl.burst - 1, openedAt: now}
		return true, 0
	}
	if c.remaining > 0 {
		c.remaining--
		return true, 0
	}
	return false, int((rl.window - now.Sub(c.openedAt)).Seconds()) + 1
}

// sweep drops client windows that have been idle for two full windows.
func (rl *RateLimiter) sweep() {
	for {
		time.Sleep(time.Hour)
		rl.mu.Lock()
		now := time.Now()
		for ip, c := range rl.clients {
			if now.Sub(c.openedAt) > 2*rl.window {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// clientIP resolves the caller address, preferring the first X-Forwarded-For
// hop for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimitMiddleware answers 429 with a Retry-After header once a client
// exhausts its window.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.Allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
