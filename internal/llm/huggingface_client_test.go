package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHuggingFace_Chat_SendsParameters(t *testing.T) {
	var got hfRequest
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/microsoft/DialoGPT-medium" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`[{"generated_text":"Human: hi\nBot: Hello there!"}]`))
	}))
	defer ts.Close()

	c := NewHuggingFaceClient(ts.URL, "hf_token", "")
	out, err := c.Chat(context.Background(), "Human: hi\nBot:")
	require.NoError(t, err)
	require.Equal(t, "Human: hi\nBot: Hello there!", out)

	require.Equal(t, "Bearer hf_token", gotAuth)
	require.Equal(t, "Human: hi\nBot:", got.Inputs)
	require.Equal(t, DefaultGenerationParams(), got.Parameters)
	require.True(t, got.Options.WaitForModel)
}

func TestHuggingFace_Chat_AnonymousWithoutToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("no Authorization header expected without token")
		}
		_, _ = w.Write([]byte(`{"generated_text":"single object"}`))
	}))
	defer ts.Close()

	out, err := NewHuggingFaceClient(ts.URL, "", "gpt2").Chat(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, "single object", out)
}

func TestHuggingFace_Chat_ModelLoading(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20}`))
	}))
	defer ts.Close()

	_, err := NewHuggingFaceClient(ts.URL, "", "gpt2").Chat(context.Background(), "x")
	require.Error(t, err)
	require.Equal(t, "Error: Model is currently loading", ErrorText(err))
}

func TestHuggingFace_Chat_ErrorIn200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer ts.Close()

	_, err := NewHuggingFaceClient(ts.URL, "", "gpt2").Chat(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limited")
}

func TestHuggingFace_Chat_EmptyAndMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"empty list": `[]`,
		"malformed":  `<html>`,
	} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := NewHuggingFaceClient(ts.URL, "", "gpt2").Chat(context.Background(), "x")
		ts.Close()
		require.Error(t, err, name)
		require.True(t, IsUpstreamError(err), name)
	}
}

func TestHuggingFace_Ping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	require.NoError(t, NewHuggingFaceClient(ts.URL, "", "gpt2").Ping(context.Background()))
}
