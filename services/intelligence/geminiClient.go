// File: service/ai/gemini_client.go
package ai

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiGenerator struct {
	model *genai.GenerativeModel
}

func NewGeminiGenerator(apiKey, modelName string) *GeminiGenerator {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel(modelName)
	return &GeminiGenerator{model: model}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (g *GeminiGenerator) AssessQuality(ctx context.Context, text string, req GenerationRequest) (float64, error) {
	return heuristicQuality(text), nil
}

func (g *GeminiGenerator) IsAvailable(ctx context.Context) bool {
	return g != nil && g.model != nil
}
