package responder

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ccastromar/chat-relay/internal/llm"
)

// ErrReplyTooShort marks generated text that is too short to be a reply
// once normalized.
var ErrReplyTooShort = errors.New("generated reply too short")

// GenerativeResponder asks a free text-generation backend and cleans the
// generated text before returning it.
type GenerativeResponder struct {
	name       string
	client     llm.LLMClient
	wrapPrompt bool
	minLen     int
}

func NewGenerativeResponder(name string, client llm.LLMClient, wrapPrompt bool, minLen int) *GenerativeResponder {
	if minLen < 1 {
		minLen = 1
	}
	return &GenerativeResponder{
		name:       name,
		client:     client,
		wrapPrompt: wrapPrompt,
		minLen:     minLen,
	}
}

func (g *GenerativeResponder) Name() string { return g.name }

func (g *GenerativeResponder) Prompt(message string) string {
	if g.wrapPrompt {
		return fmt.Sprintf(PromptTemplate, message)
	}
	return message
}

func (g *GenerativeResponder) Respond(ctx context.Context, message string) (string, error) {
	prompt := g.Prompt(message)
	raw, err := g.client.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	text := Normalize(prompt, raw)
	if n := utf8.RuneCountInString(text); n < g.minLen {
		return "", fmt.Errorf("%s: %w (%d chars)", g.name, ErrReplyTooShort, n)
	}
	return text, nil
}
