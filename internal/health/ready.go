package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ccastromar/chat-relay/internal/logx"
	"github.com/ccastromar/chat-relay/internal/runtime"
)

const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"

	providerOK    = "ok"
	providerError = "error"
)

// ProbeTTL is how long a provider probe result is reused between readiness
// requests.
const ProbeTTL = 15 * time.Second

type readyResponse struct {
	Status    string            `json:"status"`
	Providers map[string]string `json:"providers"`
}

// probeCache keeps the last provider probe for ttl so readiness traffic
// does not turn into provider traffic.
type probeCache struct {
	rt  *runtime.Runtime
	ttl time.Duration

	mu      sync.Mutex
	at      time.Time
	results map[string]string
}

func (c *probeCache) get(ctx context.Context) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.results != nil && time.Since(c.at) < c.ttl {
		return c.results
	}

	results := make(map[string]string, len(c.rt.Providers))
	for name, err := range c.rt.Probe(ctx) {
		if err != nil {
			logx.Warn("Health", "provider %s not ready: %v", name, err)
			results[name] = providerError
			continue
		}
		results[name] = providerOK
	}
	c.results, c.at = results, time.Now()
	return results
}

// ReadyHandler reports 503 until the rule table is loaded. Unreachable
// providers only degrade readiness: the rule tier can still answer.
func ReadyHandler(rt *runtime.Runtime) http.HandlerFunc {
	return readyHandler(rt, ProbeTTL)
}

func readyHandler(rt *runtime.Runtime, ttl time.Duration) http.HandlerFunc {
	cache := &probeCache{rt: rt, ttl: ttl}
	return func(w http.ResponseWriter, r *http.Request) {
		if rt == nil || !rt.RulesLoaded {
			http.Error(w, "rules not loaded", http.StatusServiceUnavailable)
			return
		}

		resp := readyResponse{Status: StatusReady, Providers: map[string]string{}}
		for name, state := range cache.get(r.Context()) {
			resp.Providers[name] = state
			if state != providerOK {
				resp.Status = StatusDegraded
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
