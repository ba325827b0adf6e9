package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10000
	clientIdleTTL     = 10 * time.Minute
)

// rateLimiter keeps one token bucket per client key.
type rateLimiter struct {
	mu         sync.Mutex
	limit      rate.Limit
	burst      int
	trustProxy bool
	clients    map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newRateLimiter returns nil when rps is not positive, which disables
// limiting.
func newRateLimiter(rps float64, burst int, trustProxy bool) *rateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		limit:      rate.Limit(rps),
		burst:      burst,
		trustProxy: trustProxy,
		clients:    make(map[string]*clientBucket),
	}
}

func (l *rateLimiter) allow(key string) bool {
	if l == nil {
		return true
	}
	if key == "" {
		key = "anon"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.clients[key]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.evictIdle()
		}
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

// evictIdle must be called with l.mu held.
func (l *rateLimiter) evictIdle() {
	cutoff := time.Now().Add(-clientIdleTTL)
	for k, b := range l.clients {
		if b.lastSeen.Before(cutoff) {
			delete(l.clients, k)
		}
	}
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l != nil && !l.allow(getClientKey(r, l.trustProxy)) {
			writeJSON(w, http.StatusTooManyRequests, chatResponse{Response: "Error: too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getClientKey identifies the caller for rate limiting. X-Forwarded-For is
// only read behind a trusted proxy, and then only its last hop: earlier
// entries are whatever the client sent.
func getClientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
				return "ip:" + ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
