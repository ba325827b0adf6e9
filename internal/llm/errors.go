package llm

import (
	"errors"
	"fmt"
)

// ConfigError reports a missing or malformed provider credential.
type ConfigError struct {
	Provider string
	Message  string
}

func (e *ConfigError) Error() string {
	return e.Provider + ": " + e.Message
}

// UpstreamError reports a network failure, a non-success status or an
// unusable body from a provider.
type UpstreamError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.detail())
	}
	return e.Provider + ": " + e.detail()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) detail() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// IsConfigError reports whether err is a credential problem.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsUpstreamError reports whether err came from talking to a provider.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ErrorText renders err as the user-facing "Error: ..." reply.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return "Error: " + ce.Message
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return "Error: " + ue.detail()
	}
	return "Error: " + err.Error()
}
