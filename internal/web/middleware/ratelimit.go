package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit allows n requests per window and client address, with bursts of
// up to n. Run it after TrustedRealIP so that RemoteAddr is the client.
func RateLimit(n int, window time.Duration) func(http.Handler) http.Handler {
	l := &ipLimiter{
		limit:    rate.Every(window / time.Duration(n)),
		burst:    n,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.reserve(r.RemoteAddr)
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				deny(w, http.StatusTooManyRequests, "rate limit exceeded", "RATE001")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
	sweeps   int
}

func (l *ipLimiter) reserve(ip string) *rate.Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	// Idle visitors are dropped every 1000 requests.
	if l.sweeps++; l.sweeps >= 1000 {
		l.sweeps = 0
		for k, other := range l.visitors {
			if now.Sub(other.lastSeen) > 10*time.Minute {
				delete(l.visitors, k)
			}
		}
	}
	return v.limiter.ReserveN(now, 1)
}
