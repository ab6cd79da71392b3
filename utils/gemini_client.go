package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient sends one prompt, optionally with one image, to a Gemini model
// and returns the concatenated text of the first candidate
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient opens a client for the named model. Close it when done.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends the prompt and image. An empty mimeType sends the prompt alone.
func (g *GeminiClient) Generate(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	parts := []genai.Part{genai.Text(prompt)}
	if mimeType != "" && len(data) > 0 {
		// ImageData takes the subtype only
		parts = append(parts, genai.ImageData(strings.TrimPrefix(mimeType, "image/"), data))
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}
