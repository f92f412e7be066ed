package recipes

import (
	"fmt"
	"sort"
	"strings"

	"fridgechef/internal/config"
	"fridgechef/internal/recipes/providers"
)

// BackendType names a recipe backend
type BackendType string

const (
	MealDBBackend BackendType = "mealdb"
	OpenAIBackend BackendType = "openai"
	AzureBackend  BackendType = "azure"
)

type factory func(cfg config.RecipesConfig) (Generator, error)

var backends = map[BackendType]factory{
	MealDBBackend: func(cfg config.RecipesConfig) (Generator, error) {
		return providers.NewMealDBProvider(cfg.MealDB.BaseURL, cfg.Timeout), nil
	},
	OpenAIBackend: func(cfg config.RecipesConfig) (Generator, error) {
		return providers.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	},
	AzureBackend: func(cfg config.RecipesConfig) (Generator, error) {
		return providers.NewAzureOpenAIProvider(cfg.Azure.Endpoint, cfg.Azure.APIKey, cfg.Azure.DeploymentName)
	},
}

// NewGenerator builds the backend named in cfg.Backend
func NewGenerator(cfg config.RecipesConfig) (Generator, error) {
	name := BackendType(strings.ToLower(strings.TrimSpace(cfg.Backend)))
	if name == "" {
		name = MealDBBackend
	}

	build, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown recipe backend %q (available: %s)", cfg.Backend, strings.Join(Backends(), ", "))
	}
	gen, err := build(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s recipe backend: %w", name, err)
	}
	return gen, nil
}

// Backends lists the registered backend names
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
