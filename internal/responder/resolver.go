package responder

import (
	"context"
	"fmt"
	"time"

	"github.com/ccastromar/chat-relay/internal/llm"
	"github.com/ccastromar/chat-relay/internal/logx"
	"github.com/ccastromar/chat-relay/internal/metrics"
)

// SourceError is the Reply.Source of a descriptive error reply.
const SourceError = "error"

type Option func(*Resolver)

// WithResponders sets the remote tiers, tried in the given order before the
// rule tier.
func WithResponders(rs ...Responder) Option {
	return func(r *Resolver) {
		r.chain = append(r.chain, rs...)
	}
}

// WithFallback controls whether a failing tier falls through to the next.
// Disabled, the first failure is returned as an "Error: ..." reply.
func WithFallback(enabled bool) Option {
	return func(r *Resolver) {
		r.fallback = enabled
	}
}

// Resolver produces exactly one reply per message. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	chain    []Responder
	rules    *RuleResponder
	fallback bool
}

func NewResolver(rules *RuleResponder, opts ...Option) *Resolver {
	if rules == nil {
		rules = NewRuleResponder(nil)
	}
	r := &Resolver{rules: rules, fallback: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Responders returns the remote tiers in priority order.
func (r *Resolver) Responders() []Responder {
	out := make([]Responder, len(r.chain))
	copy(out, r.chain)
	return out
}

// Resolve tries each remote tier once, in order, and falls back to the rule
// tier. It never fails; once ctx is done the remaining remote tiers are
// skipped.
func (r *Resolver) Resolve(ctx context.Context, message string) Reply {
	var reply Reply
	for _, rs := range r.chain {
		if err := ctx.Err(); err != nil {
			logx.Warn("Resolver", "skipping remote tiers: %v", err)
			break
		}

		start := time.Now()
		text, err := try(ctx, rs, message)
		reply.Attempts = append(reply.Attempts, Attempt{Responder: rs.Name(), Err: err, Duration: time.Since(start)})
		if err == nil {
			return finish(reply, text, rs.Name())
		}

		logx.Warn("Resolver", "%s failed: %v", rs.Name(), err)
		if !r.fallback {
			return finish(reply, llm.ErrorText(err), SourceError)
		}
	}
	return r.local(ctx, reply, message)
}

// ResolveLocal answers with the rule tier only.
func (r *Resolver) ResolveLocal(ctx context.Context, message string) Reply {
	return r.local(ctx, Reply{}, message)
}

func (r *Resolver) local(ctx context.Context, reply Reply, message string) Reply {
	start := time.Now()
	text, _ := r.rules.Respond(ctx, message)
	reply.Attempts = append(reply.Attempts, Attempt{Responder: r.rules.Name(), Duration: time.Since(start)})
	return finish(reply, text, r.rules.Name())
}

func finish(reply Reply, text, source string) Reply {
	reply.Text = text
	reply.Source = source
	metrics.Resolutions.WithLabelValues(source).Inc()
	return reply
}

// try runs one tier, turning a panic into that tier's failure.
func try(ctx context.Context, rs Responder, message string) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: panic: %v", rs.Name(), p)
		}
	}()
	return rs.Respond(ctx, message)
}
