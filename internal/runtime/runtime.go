package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/ccastromar/chat-relay/internal/llm"
	"golang.org/x/sync/errgroup"
)

// probeTimeout bounds each provider ping made by a readiness probe.
const probeTimeout = 3 * time.Second

// Provider is a named remote backend of the reply chain.
type Provider struct {
	Name   string
	Client llm.LLMClient
}

// Runtime is the state readiness is judged on.
type Runtime struct {
	RulesLoaded bool
	Providers   []Provider
}

// Probe pings every provider concurrently and returns each result by name.
func (rt *Runtime) Probe(ctx context.Context) map[string]error {
	var (
		mu  sync.Mutex
		out = make(map[string]error, len(rt.Providers))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range rt.Providers {
		p := p
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, probeTimeout)
			defer cancel()
			err := p.Client.Ping(pctx)
			mu.Lock()
			out[p.Name] = err
			mu.Unlock()
			// a failed ping must not cancel the other probes
			return nil
		})
	}
	_ = g.Wait()
	return out
}
