package providers

import (
	"context"
	"fmt"
	"strings"

	"fridgechef/internal/models"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

type chatCompleter interface {
	GetChatCompletions(ctx context.Context, body azopenai.ChatCompletionsOptions, options *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error)
}

// AzureOpenAIProvider asks an Azure OpenAI chat deployment for recipes
type AzureOpenAIProvider struct {
	client         chatCompleter
	deploymentName string
	temperature    float32
	maxTokens      int32
}

// NewAzureOpenAIProvider creates a new Azure OpenAI provider
func NewAzureOpenAIProvider(endpoint, apiKey, deploymentName string) (*AzureOpenAIProvider, error) {
	if endpoint == "" || apiKey == "" || deploymentName == "" {
		return nil, fmt.Errorf("Azure OpenAI configuration missing: endpoint, api key and deployment are required")
	}

	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}
	return newAzureOpenAIProvider(client, deploymentName), nil
}

func newAzureOpenAIProvider(client chatCompleter, deploymentName string) *AzureOpenAIProvider {
	return &AzureOpenAIProvider{
		client:         client,
		deploymentName: deploymentName,
		temperature:    0.7,
		maxTokens:      1000,
	}
}

// Name returns the provider name
func (p *AzureOpenAIProvider) Name() string {
	return "azure"
}

// Generate sends the recipe prompt to the deployment and returns the reply
func (p *AzureOpenAIProvider) Generate(ctx context.Context, ingredients []string) (models.RecipeResult, error) {
	prompt := systemPrompt + "\n\n" + recipePrompt(ingredients)
	messages := []azopenai.ChatRequestMessageClassification{
		&azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(prompt),
		},
	}

	resp, err := p.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		Messages:       messages,
		MaxTokens:      to.Ptr(p.maxTokens),
		Temperature:    to.Ptr(p.temperature),
		DeploymentName: to.Ptr(p.deploymentName),
	}, nil)
	if err != nil {
		return models.RecipeResult{}, fmt.Errorf("Azure OpenAI completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return models.RecipeResult{}, fmt.Errorf("empty response from Azure OpenAI")
	}

	text := strings.TrimSpace(*resp.Choices[0].Message.Content)
	if text == "" {
		return models.RecipeResult{}, fmt.Errorf("empty response from Azure OpenAI")
	}
	return models.RecipeResult{Text: text}, nil
}
