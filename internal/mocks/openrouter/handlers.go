// Package openrouter fakes the OpenAI-compatible endpoints the relay uses,
// for local development without a real credential.
package openrouter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ccastromar/chat-relay/internal/logx"
)

// KeyPrefix is the credential prefix the fake accepts.
const KeyPrefix = "sk-or-v1-"

// ReplyPrefix starts every fake completion.
const ReplyPrefix = "Mock reply to: "

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/chat/completions", chatCompletions)
	mux.HandleFunc("/api/v1/models", listModels)
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var e apiError
	e.Error.Message = msg
	e.Error.Type = "invalid_request_error"
	e.Error.Code = status
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}

func authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && strings.HasPrefix(token, KeyPrefix)
}

func chatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !authorized(r) {
		writeError(w, http.StatusUnauthorized, "No auth credentials found")
		return
	}

	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	last := req.Messages[len(req.Messages)-1].Content
	logx.Debug("MockOpenRouter", "completion model=%s (%d chars)", req.Model, len(last))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": ReplyPrefix + last},
		}},
	})
}

func listModels(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeError(w, http.StatusUnauthorized, "No auth credentials found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mistralai/mistral-7b-instruct", "object": "model", "owned_by": "mistralai"},
		},
	})
}
