package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Secondary provider kinds accepted in SECONDARY_PROVIDER.
const (
	SecondaryHuggingFace = "huggingface"
	SecondaryOllama      = "ollama"
	SecondaryNone        = "none"
)

type EnvVars struct {
	AppEnv       string        `envconfig:"APP_ENV" default:"dev"`
	Render       bool          `envconfig:"RENDER" default:"false"`
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// Primary provider (OpenRouter, OpenAI-compatible)
	OpenRouterAPIKey    string `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL   string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	OpenRouterModel     string `envconfig:"OPENROUTER_MODEL" default:"mistralai/mistral-7b-instruct"`
	OpenRouterKeyPrefix string `envconfig:"OPENROUTER_KEY_PREFIX" default:"sk-or-v1-"`

	// Secondary provider
	SecondaryProvider string  `envconfig:"SECONDARY_PROVIDER" default:"huggingface"`
	HFToken           string  `envconfig:"HF_API_TOKEN"`
	HFBaseURL         string  `envconfig:"HF_BASE_URL" default:"https://api-inference.huggingface.co"`
	HFModel           string  `envconfig:"HF_MODEL" default:"microsoft/DialoGPT-medium"`
	HFMaxLength       int     `envconfig:"HF_MAX_LENGTH" default:"100"`
	HFTemperature     float64 `envconfig:"HF_TEMPERATURE" default:"0.7"`
	HFTopP            float64 `envconfig:"HF_TOP_P" default:"0.9"`
	HFWrapPrompt      bool    `envconfig:"HF_WRAP_PROMPT" default:"true"`
	MinReplyLength    int     `envconfig:"MIN_REPLY_LENGTH" default:"5"`

	// Ollama (local LLM) as secondary
	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OllamaModel   string `envconfig:"OLLAMA_MODEL" default:"qwen3:0.6b"`

	LLMTimeout      time.Duration `envconfig:"LLM_TIMEOUT" default:"10s"`
	FallbackEnabled bool          `envconfig:"FALLBACK_ENABLED" default:"true"`
	RulesFile       string        `envconfig:"RULES_FILE"`

	DebugEndpoints bool    `envconfig:"DEBUG_ENDPOINTS" default:"false"`
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"5"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
	// TrustProxy keys rate limiting on the hop appended by a fronting proxy
	// (Render) instead of the socket address.
	TrustProxy bool `envconfig:"TRUST_PROXY" default:"false"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnv reads the process configuration. Outside Render, the given dotenv
// files (or ./.env when none are given) are loaded first; variables already
// present in the environment win over file values.
func LoadEnv(files ...string) (*EnvVars, error) {
	if os.Getenv("RENDER") != "true" {
		if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	var v EnvVars
	if err := envconfig.Process("", &v); err != nil {
		return nil, fmt.Errorf("processing env: %w", err)
	}
	v.SecondaryProvider = strings.ToLower(strings.TrimSpace(v.SecondaryProvider))
	switch v.SecondaryProvider {
	case SecondaryHuggingFace, SecondaryOllama, SecondaryNone:
	default:
		return nil, fmt.Errorf("unknown SECONDARY_PROVIDER %q", v.SecondaryProvider)
	}
	return &v, nil
}

// DebugEnabled reports whether the development-only endpoints are exposed.
func (v *EnvVars) DebugEnabled() bool {
	return v.DebugEndpoints || !v.Render
}

// MaskSecret returns a short preview of a secret that is safe to log or expose.
func MaskSecret(s string) string {
	const visible = 8
	if s == "" {
		return "None"
	}
	runes := []rune(s)
	if len(runes) <= visible {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:visible]) + "..."
}
