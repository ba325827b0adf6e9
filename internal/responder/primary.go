package responder

import (
	"context"
	"strings"

	"github.com/ccastromar/chat-relay/internal/llm"
)

// PrimaryResponder returns the completion of the metered provider as is.
type PrimaryResponder struct {
	name   string
	client llm.LLMClient
}

func NewPrimaryResponder(name string, client llm.LLMClient) *PrimaryResponder {
	return &PrimaryResponder{name: name, client: client}
}

func (p *PrimaryResponder) Name() string { return p.name }

func (p *PrimaryResponder) Respond(ctx context.Context, message string) (string, error) {
	out, err := p.client.Chat(ctx, message)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", &llm.UpstreamError{Provider: p.name, Message: "empty completion"}
	}
	return out, nil
}
