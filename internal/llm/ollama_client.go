package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ccastromar/chat-relay/internal/metrics"
)

const ProviderOllama = "ollama"

// OllamaClient is the self-hosted alternative to the Hugging Face tier.
type OllamaClient struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Asegura que implementa la interfaz
var _ LLMClient = (*OllamaClient)(nil)

func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		BaseURL: baseURL,
		Model:   model,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		Timeout: DefaultTimeout,
	}
}

type ollamaChunk struct {
	Message *struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error"`
}

func (c *OllamaClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c *OllamaClient) Chat(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.Model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"stream": true,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	out, err := c.stream(ctx, data)
	metrics.ObserveChat(ProviderOllama, err, time.Since(start).Seconds())
	return out, err
}

// stream concatenates the NDJSON chunks of a streamed /api/chat reply.
func (c *OllamaClient) stream(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: ProviderOllama, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return "", &UpstreamError{Provider: ProviderOllama, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}

	dec := json.NewDecoder(resp.Body)
	var out bytes.Buffer
	for {
		var chunk ollamaChunk
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", &UpstreamError{Provider: ProviderOllama, StatusCode: resp.StatusCode, Message: "unparseable stream", Err: err}
		}
		if chunk.Error != "" {
			return "", &UpstreamError{Provider: ProviderOllama, StatusCode: resp.StatusCode, Message: chunk.Error}
		}
		if chunk.Message != nil {
			out.WriteString(chunk.Message.Content)
		}
		if chunk.Done {
			break
		}
	}
	return out.String(), nil
}

// Ping checks if Ollama is reachable and responding.
func (c *OllamaClient) Ping(ctx context.Context) error {
	// Ollama health: GET /api/tags
	ctx, cancel := withTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.BaseURL, "/")+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		err = &UpstreamError{Provider: ProviderOllama, Message: "ping failed", Err: err}
		metrics.ObservePing(ProviderOllama, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = &UpstreamError{Provider: ProviderOllama, StatusCode: resp.StatusCode, Message: "ping failed"}
	}
	metrics.ObservePing(ProviderOllama, err)
	return err
}
