// File: service/ai/anthropic_client.go
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	return &AnthropicGenerator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (a *AnthropicGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 256,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content in anthropic response")
}

func (a *AnthropicGenerator) AssessQuality(ctx context.Context, text string, req GenerationRequest) (float64, error) {
	return heuristicQuality(text), nil
}

func (a *AnthropicGenerator) IsAvailable(ctx context.Context) bool {
	return a != nil && a.model != ""
}
