// Package generator obtains corpus-valid verses from an external
// language-generation service through a bounded request/feedback protocol.
package generator

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// GenerateOptions are the per-request constraints passed to the generator.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float32
	Stop        []string
}

// Client is the minimal surface the negotiator needs from a text generator.
// The service is treated as unreliable and possibly non-compliant with
// instructions; callers validate everything it returns.
type Client interface {
	Generate(ctx context.Context, system, user string, opts GenerateOptions) (string, error)
}

// OpenAIConfig configures the chat-completion client. BaseURL supports
// OpenAI-wire-compatible providers (GLM, DeepSeek, local gateways).
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAIClient implements Client over the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client for the configured endpoint and model.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Generate implements Client.
func (o *OpenAIClient) Generate(ctx context.Context, system, user string, opts GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.Stop,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
