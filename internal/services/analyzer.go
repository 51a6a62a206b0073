package services

import (
	"context"
	"fmt"

	"plant-analyzer/internal/config"
)

// PlantAnalysisPrompt is sent alongside every uploaded image.
const PlantAnalysisPrompt = "Analyze this plant image and provide detailed analysis of its species, health, and care recommendations, its characteristics, care instructions, and any interesting facts. Please provide the response in plain text without using any markdown formatting."

// Analyzer turns an image into descriptive plain text using a remote
// vision-language model. One call, no retries.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, imageData []byte, mimeType string) (string, error)
}

// NewAnalyzer builds the client for the configured provider. The result is
// created once at startup and shared by all requests.
func NewAnalyzer(ctx context.Context, cfg config.InferenceConfig) (Analyzer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiService(ctx, cfg.APIKey, cfg.Model)
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", cfg.Provider)
	}
}
