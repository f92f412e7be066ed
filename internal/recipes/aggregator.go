package recipes

import (
	"context"
	"fmt"
	"time"

	"fridgechef/internal/models"

	"go.uber.org/zap"
)

// Generator turns a list of ingredient names into recipe suggestions
type Generator interface {
	Name() string
	Generate(ctx context.Context, ingredients []string) (models.RecipeResult, error)
}

// IngredientSource supplies the names currently in the fridge
type IngredientSource interface {
	Names(ctx context.Context) ([]string, error)
}

// Recorder observes backend calls
type Recorder interface {
	ObserveRecipeCall(backend string, d time.Duration, err error)
}

// Aggregator derives a recipe query from the fridge and forwards it to the
// configured generator. It keeps no state between calls.
type Aggregator struct {
	source    IngredientSource
	generator Generator
	recorder  Recorder
	log       *zap.Logger
}

// NewAggregator creates a new recipe aggregator. recorder may be nil.
func NewAggregator(source IngredientSource, generator Generator, recorder Recorder, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{
		source:    source,
		generator: generator,
		recorder:  recorder,
		log:       log.Named("recipes"),
	}
}

// Backend names the configured generator
func (a *Aggregator) Backend() string {
	return a.generator.Name()
}

// Suggest returns recipes for the current fridge contents. An empty fridge
// yields an empty result without calling the backend.
func (a *Aggregator) Suggest(ctx context.Context) (models.RecipeResult, error) {
	names, err := a.source.Names(ctx)
	if err != nil {
		return models.RecipeResult{}, err
	}
	if len(names) == 0 {
		return models.RecipeResult{Meals: []models.RecipeSuggestion{}}, nil
	}

	start := time.Now()
	result, err := a.generator.Generate(ctx, names)
	if a.recorder != nil {
		a.recorder.ObserveRecipeCall(a.generator.Name(), time.Since(start), err)
	}
	if err != nil {
		a.log.Warn("recipe backend failed", zap.String("backend", a.generator.Name()), zap.Error(err))
		return models.RecipeResult{}, fmt.Errorf("%w: %s: %v", models.ErrDependency, a.generator.Name(), err)
	}
	if result.Empty() {
		a.log.Info("recipe backend found nothing", zap.String("backend", a.generator.Name()), zap.Int("ingredients", len(names)))
		return models.RecipeResult{Meals: []models.RecipeSuggestion{}}, nil
	}
	return result, nil
}
