package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ccastromar/chat-relay/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, h http.Handler, path string, v any) int {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	if v != nil && rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
	}
	return rr.Code
}

func TestDebug_MasksKey(t *testing.T) {
	env := testEnv()
	env.OpenRouterAPIKey = "sk-or-v1-abcdef0123456789"
	h := newTestRouter(t, Deps{Env: env})

	var resp map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, h, "/debug", &resp))

	assert.Equal(t, true, resp["api_key_exists"])
	assert.Equal(t, float64(len(env.OpenRouterAPIKey)), resp["api_key_length"])
	assert.Equal(t, "sk-or-v1...", resp["api_key_preview"])
	assert.Equal(t, true, resp["api_key_format_ok"])
	assert.NotContains(t, resp, "all_env_vars")

	raw, _ := json.Marshal(resp)
	assert.NotContains(t, string(raw), env.OpenRouterAPIKey)
}

func TestDebugRoutes_HiddenOnRender(t *testing.T) {
	env := testEnv()
	env.Render = true
	h := newTestRouter(t, Deps{Env: env})

	for _, path := range []string{"/debug", "/test-connection", "/test-hf"} {
		assert.Equal(t, http.StatusNotFound, getJSON(t, h, path, nil), path)
	}
}

func TestDebugRoutes_ForcedOnRender(t *testing.T) {
	env := testEnv()
	env.Render = true
	env.DebugEndpoints = true
	h := newTestRouter(t, Deps{Env: env})

	assert.Equal(t, http.StatusOK, getJSON(t, h, "/debug", nil))
}

func TestTestConnection_Success(t *testing.T) {
	h := newTestRouter(t, Deps{Primary: stubResponder{name: "openrouter", text: "pong"}})

	var resp probeResponse
	require.Equal(t, http.StatusOK, getJSON(t, h, "/test-connection", &resp))
	assert.Equal(t, probeResponse{Status: "success", Message: "Connection working", Response: "pong"}, resp)
}

func TestTestConnection_MissingKey(t *testing.T) {
	primary := stubResponder{
		name: "openrouter",
		err:  &llm.ConfigError{Provider: llm.ProviderOpenRouter, Message: "API key not found in environment variables"},
	}
	h := newTestRouter(t, Deps{Primary: primary})

	var resp probeResponse
	require.Equal(t, http.StatusOK, getJSON(t, h, "/test-connection", &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "API key not found in environment variables", resp.Message)
}

func TestTestHF_Failure(t *testing.T) {
	h := newTestRouter(t, Deps{Secondary: stubResponder{name: "huggingface", err: errors.New("model loading")}})

	var resp probeResponse
	require.Equal(t, http.StatusOK, getJSON(t, h, "/test-hf", &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "model loading", resp.Message)
}

func TestTestHF_NotConfigured(t *testing.T) {
	h := newTestRouter(t, Deps{})

	var resp probeResponse
	require.Equal(t, http.StatusOK, getJSON(t, h, "/test-hf", &resp))
	assert.Equal(t, "error", resp.Status)
}
