// Package augment forwards transcript text to a remote chat-completion
// API. Failures here never fail the parent request: every call returns
// a Result carrying either the reply or an error string.
package augment

import (
	"context"
	"fmt"

	"github.com/voicescribe/voicescribe/internal/config"
)

// Result is the outcome of one augmentation call. Exactly one field is
// meaningful: a non-empty reply on success, a non-empty error otherwise.
type Result struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

const systemPreamble = "You are a helpful assistant responding to voice input"

// Provider is the interface for chat-completion backends.
type Provider interface {
	Augment(ctx context.Context, text string) Result
	Name() string
}

// New builds the configured provider. A missing API key for the chosen
// backend is a configuration error; the caller must not start serving.
func New(cfg config.AugmentConfig) (Provider, error) {
	switch cfg.Backend {
	case "", "deepseek":
		return NewDeepSeek(cfg.DeepSeekKey, cfg.DeepSeekBaseURL, cfg.DeepSeekModel, cfg.Timeout)
	case "anthropic":
		return NewAnthropic(cfg.AnthropicKey, cfg.AnthropicModel, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown augment backend %q", cfg.Backend)
	}
}
