package llm

import (
	"context"
	"time"
)

// DefaultTimeout bounds every provider call that does not set its own.
const DefaultTimeout = 10 * time.Second

type LLMClient interface {
	Ping(ctx context.Context) error
	Chat(ctx context.Context, prompt string) (string, error)
}

// withTimeout derives a bounded context so a provider call can never block
// past d, and still aborts when the caller's context is cancelled.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}
