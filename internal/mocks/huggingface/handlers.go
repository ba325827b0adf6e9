// Package huggingface fakes the Inference API text-generation endpoint. Like
// the real conversational models it echoes the prompt and keeps the dialogue
// going past the bot turn.
package huggingface

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ccastromar/chat-relay/internal/logx"
)

// DownModel always answers 503, as a model that is still loading does.
const DownModel = "mock/down"

// Reply is the bot turn the fake generates.
const Reply = "Hello from the mock model!"

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/models/", generate)
}

func generate(w http.ResponseWriter, r *http.Request) {
	model := strings.TrimPrefix(r.URL.Path, "/models/")
	w.Header().Set("Content-Type", "application/json")

	if model == DownModel {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Model " + model + " is currently loading", "estimated_time": 20.0})
		return
	}

	switch r.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"modelId": model, "pipeline_tag": "text-generation"})
	case http.MethodPost:
		var req struct {
			Inputs string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid json"})
			return
		}
		logx.Debug("MockHF", "generate model=%s (%d chars)", model, len(req.Inputs))
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"generated_text": req.Inputs + " " + Reply + "\nHuman: and then?"},
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
