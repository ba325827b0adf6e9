// Package api serves the chat routes and the development probes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/ccastromar/chat-relay/internal/config"
	"github.com/ccastromar/chat-relay/internal/logx"
	"github.com/ccastromar/chat-relay/internal/responder"
	"github.com/ccastromar/chat-relay/internal/ui"
	"github.com/go-chi/chi/v5"
)

const (
	ReplySourceHeader = "X-Reply-Source"

	invalidBodyReply = "Error: invalid request body"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Resolver *responder.Resolver
	UI       *ui.UIStore // nil disables the request timeline
	Env      *config.EnvVars

	// Probed by the debug routes; either may be nil.
	Primary   responder.Responder
	Secondary responder.Responder
}

type ChatAPI struct {
	resolver  *responder.Resolver
	uiStore   *ui.UIStore
	env       *config.EnvVars
	primary   responder.Responder
	secondary responder.Responder
	limiter   *rateLimiter
}

func NewChatAPI(d Deps) *ChatAPI {
	env := d.Env
	if env == nil {
		env = &config.EnvVars{}
	}
	return &ChatAPI{
		resolver:  d.Resolver,
		uiStore:   d.UI,
		env:       env,
		primary:   d.Primary,
		secondary: d.Secondary,
		limiter:   newRateLimiter(env.RateLimitRPS, env.RateLimitBurst, env.TrustProxy),
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Routes registers the chat routes, and the debug routes when enabled.
func (a *ChatAPI) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(a.limiter.middleware)
		r.Post("/chat", a.handleChat)
		r.Post("/chat-simple", a.handleChatSimple)
	})

	if a.env.DebugEnabled() {
		r.Get("/debug", a.handleDebug)
		r.Get("/test-connection", a.handleTestConnection)
		r.Get("/test-hf", a.handleTestSecondary)
	}
}

func (a *ChatAPI) handleChat(w http.ResponseWriter, r *http.Request) {
	a.serveChat(w, r, a.resolver.Resolve)
}

// handleChatSimple answers from the local rules only.
func (a *ChatAPI) handleChatSimple(w http.ResponseWriter, r *http.Request) {
	a.serveChat(w, r, a.resolver.ResolveLocal)
}

func (a *ChatAPI) serveChat(w http.ResponseWriter, r *http.Request, resolve func(context.Context, string) responder.Reply) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		logx.Warn("API", "invalid chat body: %v", err)
		writeJSON(w, status, chatResponse{Response: invalidBodyReply})
		return
	}

	id := RequestID(r.Context())
	logx.L(id, "API", "%s: message received (%d chars)", r.URL.Path, utf8.RuneCountInString(req.Message))
	a.uiStore.AddEvent(id, "API", "request", req.Message, "")

	timer := logx.Start(id, "API", "resolve")
	reply := resolve(r.Context(), req.Message)
	elapsed := timer.End()

	a.record(id, reply)
	a.uiStore.AddEvent(id, "API", "reply", reply.Source+": "+reply.Text, elapsed.String())
	logx.L(id, "API", "reply from %s after %d attempt(s)", reply.Source, len(reply.Attempts))

	w.Header().Set(ReplySourceHeader, reply.Source)
	writeJSON(w, http.StatusOK, chatResponse{Response: reply.Text})
}

func (a *ChatAPI) record(id string, reply responder.Reply) {
	for _, at := range reply.Attempts {
		msg := fmt.Sprintf("%s: %s", at.Responder, at.Outcome())
		kind := "attempt"
		if at.Err != nil {
			msg += ": " + at.Err.Error()
			kind = "error"
		}
		a.uiStore.AddEvent(id, "Resolver", kind, msg, at.Duration.String())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
