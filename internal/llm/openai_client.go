package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ccastromar/chat-relay/internal/metrics"
	openai "github.com/sashabaranov/go-openai"
)

const (
	ProviderOpenRouter = "openrouter"

	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "mistralai/mistral-7b-instruct"
)

// OpenAIClient talks to an OpenAI-compatible chat completions API. The relay
// points it at OpenRouter.
type OpenAIClient struct {
	BaseURL   string
	APIKey    string
	KeyPrefix string // expected credential prefix, empty to skip the check
	Model     string
	HTTP      *http.Client
	Timeout   time.Duration
}

// Compile-time interface conformance
var _ LLMClient = (*OpenAIClient)(nil)

func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenRouterBaseURL
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	return &OpenAIClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP: &http.Client{
			Timeout: DefaultTimeout,
		},
		Timeout: DefaultTimeout,
	}
}

// CheckKey validates the configured credential without any network call.
func (c *OpenAIClient) CheckKey() error {
	if c.APIKey == "" {
		return &ConfigError{Provider: ProviderOpenRouter, Message: "API key not found in environment variables"}
	}
	if c.KeyPrefix != "" && !strings.HasPrefix(c.APIKey, c.KeyPrefix) {
		return &ConfigError{Provider: ProviderOpenRouter, Message: "API key format seems incorrect"}
	}
	return nil
}

func (c *OpenAIClient) api() *openai.Client {
	cfg := openai.DefaultConfig(c.APIKey)
	cfg.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.HTTP != nil {
		cfg.HTTPClient = c.HTTP
	}
	return openai.NewClientWithConfig(cfg)
}

// Ping lists the provider's models.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	if err := c.CheckKey(); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	_, err := c.api().ListModels(ctx)
	if err != nil {
		err = mapOpenAIError(err)
	}
	metrics.ObservePing(ProviderOpenRouter, err)
	return err
}

// Chat sends prompt as the only user turn with the provider's default
// sampling and returns the first choice unmodified.
func (c *OpenAIClient) Chat(ctx context.Context, prompt string) (string, error) {
	if err := c.CheckKey(); err != nil {
		return "", err
	}
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err == nil && len(resp.Choices) == 0 {
		err = &UpstreamError{Provider: ProviderOpenRouter, StatusCode: http.StatusOK, Message: "empty response"}
	} else if err != nil {
		err = mapOpenAIError(err)
	}
	metrics.ObserveChat(ProviderOpenRouter, err, time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Provider: ProviderOpenRouter, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{Provider: ProviderOpenRouter, StatusCode: reqErr.HTTPStatusCode, Message: "request failed", Err: reqErr.Err}
	}
	return &UpstreamError{Provider: ProviderOpenRouter, Message: "request failed", Err: err}
}
