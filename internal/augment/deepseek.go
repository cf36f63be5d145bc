package augment

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DeepSeek calls the DeepSeek chat API through its OpenAI-compatible
// surface.
type DeepSeek struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewDeepSeek(apiKey, baseURL, model string, timeout time.Duration) (*DeepSeek, error) {
	if apiKey == "" {
		return nil, errors.New("deepseek: API key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.deepseek.com"
	}
	if model == "" {
		model = "deepseek-chat"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cc := openai.DefaultConfig(apiKey)
	cc.BaseURL = baseURL

	return &DeepSeek{
		client:  openai.NewClientWithConfig(cc),
		model:   model,
		timeout: timeout,
	}, nil
}

func (d *DeepSeek) Name() string { return "deepseek" }

func (d *DeepSeek) Augment(ctx context.Context, text string) Result {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPreamble},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return Result{Error: fmt.Sprintf("Error processing request: %v", err)}
	}
	if len(resp.Choices) == 0 {
		return Result{Error: "Error processing request: empty completion"}
	}

	return Result{Response: resp.Choices[0].Message.Content}
}
