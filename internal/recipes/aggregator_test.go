package recipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"fridgechef/internal/config"
	"fridgechef/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	names []string
	err   error
}

func (s staticSource) Names(ctx context.Context) ([]string, error) {
	return s.names, s.err
}

type fakeGenerator struct {
	calls  int
	got    []string
	result models.RecipeResult
	err    error
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Generate(ctx context.Context, ingredients []string) (models.RecipeResult, error) {
	g.calls++
	g.got = ingredients
	return g.result, g.err
}

type recordedCall struct {
	backend string
	err     error
}

type fakeRecorder struct {
	calls []recordedCall
}

func (r *fakeRecorder) ObserveRecipeCall(backend string, d time.Duration, err error) {
	r.calls = append(r.calls, recordedCall{backend: backend, err: err})
}

func TestSuggest_EmptyFridgeSkipsBackend(t *testing.T) {
	gen := &fakeGenerator{}
	rec := &fakeRecorder{}
	agg := NewAggregator(staticSource{}, gen, rec, nil)

	result, err := agg.Suggest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, gen.calls)
	assert.Empty(t, rec.calls)
	assert.NotNil(t, result.Meals)
	assert.True(t, result.Empty())
}

func TestSuggest_ForwardsNames(t *testing.T) {
	gen := &fakeGenerator{result: models.RecipeResult{Meals: []models.RecipeSuggestion{{ID: "52772", Title: "Teriyaki Chicken Casserole"}}}}
	rec := &fakeRecorder{}
	agg := NewAggregator(staticSource{names: []string{"chicken", "rice"}}, gen, rec, nil)

	result, err := agg.Suggest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"chicken", "rice"}, gen.got)
	require.Len(t, result.Meals, 1)
	assert.Equal(t, "Teriyaki Chicken Casserole", result.Meals[0].Title)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "fake", rec.calls[0].backend)
	assert.NoError(t, rec.calls[0].err)
}

func TestSuggest_NothingFoundIsEmptyList(t *testing.T) {
	gen := &fakeGenerator{}
	agg := NewAggregator(staticSource{names: []string{"durian"}}, gen, nil, nil)

	result, err := agg.Suggest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.NotNil(t, result.Meals)
	assert.True(t, result.Empty())
}

func TestSuggest_BackendFailureIsDependencyError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	rec := &fakeRecorder{}
	agg := NewAggregator(staticSource{names: []string{"eggs"}}, gen, rec, nil)

	_, err := agg.Suggest(context.Background())
	assert.ErrorIs(t, err, models.ErrDependency)

	// No retries.
	assert.Equal(t, 1, gen.calls)
	require.Len(t, rec.calls, 1)
	assert.Error(t, rec.calls[0].err)
}

func TestSuggest_NoCaching(t *testing.T) {
	gen := &fakeGenerator{result: models.RecipeResult{Text: "Omelette"}}
	agg := NewAggregator(staticSource{names: []string{"eggs"}}, gen, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := agg.Suggest(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, gen.calls)
}

func TestSuggest_SourceErrorPassesThrough(t *testing.T) {
	boom := errors.New("store down")
	agg := NewAggregator(staticSource{err: boom}, &fakeGenerator{}, nil, nil)

	_, err := agg.Suggest(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, models.ErrDependency)
}

func TestNewGenerator(t *testing.T) {
	var cfg config.RecipesConfig

	gen, err := NewGenerator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mealdb", gen.Name())

	cfg.Backend = "openai"
	_, err = NewGenerator(cfg)
	assert.Error(t, err, "openai backend needs an API key")

	cfg.OpenAI.APIKey = "sk-test"
	gen, err = NewGenerator(cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", gen.Name())

	cfg.Backend = "azure"
	_, err = NewGenerator(cfg)
	assert.Error(t, err)

	cfg.Backend = "spoonacular"
	_, err = NewGenerator(cfg)
	assert.Error(t, err)
}

func TestBackends(t *testing.T) {
	assert.Equal(t, []string{"azure", "mealdb", "openai"}, Backends())
}
