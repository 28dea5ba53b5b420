package middleware

import (
	"net/http"
	"sync"
	"time"
)

const (
	evictEvery = 5 * time.Minute
	evictAfter = 10 * time.Minute
)

// RateLimit caps requests per client IP with a token bucket and answers
// anything over the cap with 429. Buckets refill at rate tokens/sec up to
// burst. Idle clients are evicted so the bucket map stays bounded; the
// webhook route is the only public write surface, so per-IP is enough.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	lim := newIPLimiter(rate, burst)
	go lim.evictLoop()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			// RealIP middleware runs earlier in the chain and sets X-Real-Ip.
			if v := r.Header.Get("X-Real-Ip"); v != "" {
				ip = v
			}
			if !lim.allow(ip, time.Now()) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ipLimiter struct {
	mu    sync.Mutex
	rate  float64
	burst float64
	seen  map[string]*tokenBucket
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

func newIPLimiter(rate float64, burst int) *ipLimiter {
	return &ipLimiter{
		rate:  rate,
		burst: float64(burst),
		seen:  make(map[string]*tokenBucket),
	}
}

// allow spends one token from ip's bucket, refilling for the time elapsed
// since the previous request. New clients start with a full bucket.
func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.seen[ip]
	if !ok {
		b = &tokenBucket{tokens: l.burst, lastSeen: now}
		l.seen[ip] = b
	}

	b.tokens = min(l.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*l.rate)
	b.lastSeen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *ipLimiter) evictLoop() {
	ticker := time.NewTicker(evictEvery)
	defer ticker.Stop()
	for now := range ticker.C {
		l.mu.Lock()
		for ip, b := range l.seen {
			if now.Sub(b.lastSeen) > evictAfter {
				delete(l.seen, ip)
			}
		}
		l.mu.Unlock()
	}
}
