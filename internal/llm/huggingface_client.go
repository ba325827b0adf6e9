package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ccastromar/chat-relay/internal/metrics"
)

const (
	ProviderHuggingFace = "huggingface"

	DefaultHuggingFaceBaseURL = "https://api-inference.huggingface.co"
	DefaultHuggingFaceModel   = "microsoft/DialoGPT-medium"

	maxResponseBytes = 1 << 20
)

// GenerationParams are the fixed sampling parameters sent with every
// text-generation call.
type GenerationParams struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	DoSample    bool    `json:"do_sample"`
}

func DefaultGenerationParams() GenerationParams {
	return GenerationParams{MaxLength: 100, Temperature: 0.7, TopP: 0.9, DoSample: true}
}

// HuggingFaceClient calls the hosted Inference API text-generation endpoint.
// The token is optional; anonymous calls are rate limited upstream.
type HuggingFaceClient struct {
	BaseURL string
	Token   string
	Model   string
	Params  GenerationParams
	HTTP    *http.Client
	Timeout time.Duration
}

var _ LLMClient = (*HuggingFaceClient)(nil)

func NewHuggingFaceClient(baseURL, token, model string) *HuggingFaceClient {
	if baseURL == "" {
		baseURL = DefaultHuggingFaceBaseURL
	}
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	return &HuggingFaceClient{
		BaseURL: baseURL,
		Token:   token,
		Model:   model,
		Params:  DefaultGenerationParams(),
		HTTP:    &http.Client{Timeout: DefaultTimeout},
		Timeout: DefaultTimeout,
	}
}

type hfRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters GenerationParams `json:"parameters"`
	Options    hfOptions        `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error string `json:"error"`
}

func (c *HuggingFaceClient) modelURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/models/" + c.Model
}

func (c *HuggingFaceClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// Chat returns the raw generated text, which usually echoes the prompt.
func (c *HuggingFaceClient) Chat(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(hfRequest{
		Inputs:     prompt,
		Parameters: c.Params,
		Options:    hfOptions{WaitForModel: true},
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	text, err := c.generate(ctx, body)
	metrics.ObserveChat(ProviderHuggingFace, err, time.Since(start).Seconds())
	return text, err
}

func (c *HuggingFaceClient) generate(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &UpstreamError{Provider: ProviderHuggingFace, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &UpstreamError{Provider: ProviderHuggingFace, StatusCode: resp.StatusCode, Message: "reading body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		var e hfError
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return "", &UpstreamError{Provider: ProviderHuggingFace, StatusCode: resp.StatusCode, Message: msg}
	}

	return parseGeneration(raw)
}

// parseGeneration accepts the list form the API normally returns, the
// single-object form some pipelines return, and the 200-with-error form.
func parseGeneration(raw []byte) (string, error) {
	var list []hfGeneration
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", &UpstreamError{Provider: ProviderHuggingFace, StatusCode: http.StatusOK, Message: "empty response"}
		}
		return list[0].GeneratedText, nil
	}

	var obj struct {
		hfGeneration
		hfError
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", &UpstreamError{Provider: ProviderHuggingFace, StatusCode: http.StatusOK, Message: "unparseable response", Err: err}
	}
	if obj.Error != "" {
		return "", &UpstreamError{Provider: ProviderHuggingFace, StatusCode: http.StatusOK, Message: obj.Error}
	}
	return obj.GeneratedText, nil
}

// Ping checks that the model endpoint answers.
func (c *HuggingFaceClient) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(), nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		err = &UpstreamError{Provider: ProviderHuggingFace, Message: "ping failed", Err: err}
		metrics.ObservePing(ProviderHuggingFace, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = &UpstreamError{Provider: ProviderHuggingFace, StatusCode: resp.StatusCode, Message: "ping failed"}
	}
	metrics.ObservePing(ProviderHuggingFace, err)
	return err
}
