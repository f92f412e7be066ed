package providers

import (
	"context"
	"fmt"
	"strings"

	"fridgechef/internal/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LLMProvider asks a langchaingo model to write recipes for the fridge contents
type LLMProvider struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

// NewOpenAIProvider creates an OpenAI-compatible text-generation backend.
// baseURL may point at any compatible endpoint; empty uses OpenAI.
func NewOpenAIProvider(apiKey, model, baseURL string) (*LLMProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("an API key is required for the openai recipe backend")
	}

	opts := []openai.Option{openai.WithToken(apiKey)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return NewLLMProvider(client), nil
}

// NewLLMProvider wraps any langchaingo model
func NewLLMProvider(model llms.Model) *LLMProvider {
	return &LLMProvider{
		model:       model,
		temperature: 0.7,
		maxTokens:   1000,
	}
}

// Name returns the provider name
func (p *LLMProvider) Name() string {
	return "openai"
}

// Generate prompts the model with the ingredient list and returns its text
func (p *LLMProvider) Generate(ctx context.Context, ingredients []string) (models.RecipeResult, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, recipePrompt(ingredients)),
	}

	response, err := p.model.GenerateContent(ctx, messages,
		llms.WithTemperature(p.temperature),
		llms.WithMaxTokens(p.maxTokens),
	)
	if err != nil {
		return models.RecipeResult{}, fmt.Errorf("failed to generate recipes: %w", err)
	}
	if response == nil || len(response.Choices) == 0 {
		return models.RecipeResult{}, fmt.Errorf("empty response from language model")
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return models.RecipeResult{}, fmt.Errorf("empty response from language model")
	}
	return models.RecipeResult{Text: text}, nil
}
