package api

import (
	"net/http"
	"strings"

	"github.com/ccastromar/chat-relay/internal/config"
	"github.com/ccastromar/chat-relay/internal/llm"
	"github.com/ccastromar/chat-relay/internal/logx"
	"github.com/ccastromar/chat-relay/internal/responder"
)

const probeMessage = "Hello, just testing connection"

// debugResponse describes the configuration without exposing secrets.
type debugResponse struct {
	RenderEnv         bool   `json:"render_env"`
	APIKeyExists      bool   `json:"api_key_exists"`
	APIKeyLength      int    `json:"api_key_length"`
	APIKeyPreview     string `json:"api_key_preview"`
	APIKeyFormatOK    bool   `json:"api_key_format_ok"`
	SecondaryProvider string `json:"secondary_provider"`
	HFTokenExists     bool   `json:"hf_token_exists"`
	FallbackEnabled   bool   `json:"fallback_enabled"`
}

type probeResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Response string `json:"response,omitempty"`
}

func (a *ChatAPI) handleDebug(w http.ResponseWriter, r *http.Request) {
	key := a.env.OpenRouterAPIKey
	writeJSON(w, http.StatusOK, debugResponse{
		RenderEnv:         a.env.Render,
		APIKeyExists:      key != "",
		APIKeyLength:      len(key),
		APIKeyPreview:     config.MaskSecret(key),
		APIKeyFormatOK:    key != "" && strings.HasPrefix(key, a.env.OpenRouterKeyPrefix),
		SecondaryProvider: a.env.SecondaryProvider,
		HFTokenExists:     a.env.HFToken != "",
		FallbackEnabled:   a.env.FallbackEnabled,
	})
}

// handleTestConnection sends one probe message to the primary provider.
func (a *ChatAPI) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	a.probe(w, r, a.primary)
}

// handleTestSecondary sends one probe message to the secondary provider.
func (a *ChatAPI) handleTestSecondary(w http.ResponseWriter, r *http.Request) {
	a.probe(w, r, a.secondary)
}

// probe always answers 200; the outcome is in the body.
func (a *ChatAPI) probe(w http.ResponseWriter, r *http.Request, rs responder.Responder) {
	if rs == nil {
		writeJSON(w, http.StatusOK, probeResponse{Status: "error", Message: "provider not configured"})
		return
	}

	out, err := rs.Respond(r.Context(), probeMessage)
	if err != nil {
		logx.L(RequestID(r.Context()), "API", "%s probe failed: %v", rs.Name(), err)
		writeJSON(w, http.StatusOK, probeResponse{
			Status:  "error",
			Message: strings.TrimPrefix(llm.ErrorText(err), "Error: "),
		})
		return
	}
	writeJSON(w, http.StatusOK, probeResponse{Status: "success", Message: "Connection working", Response: out})
}
