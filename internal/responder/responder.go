// Package responder decides which backend answers a chat message and turns
// that backend's output into the user-facing reply.
package responder

import (
	"context"
	"time"
)

// Responder is one tier of the fallback chain. A non-nil error means the
// tier could not answer and the next one should be tried.
type Responder interface {
	Name() string
	Respond(ctx context.Context, message string) (string, error)
}

// Attempt records one tier tried while resolving a message.
type Attempt struct {
	Responder string
	Err       error
	Duration  time.Duration
}

func (a Attempt) Outcome() string {
	if a.Err != nil {
		return "error"
	}
	return "ok"
}

// Reply is the single answer produced for a message.
type Reply struct {
	Text     string
	Source   string // name of the responder that produced Text, or SourceError
	Attempts []Attempt
}
