package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"fridgechef/internal/models"
)

// DefaultMealDBURL is TheMealDB public API with the shared test key
const DefaultMealDBURL = "https://www.themealdb.com/api/json/v1/1"

const mealPageURL = "https://www.themealdb.com/meal/"

// MealDBProvider looks recipes up by ingredient on TheMealDB
type MealDBProvider struct {
	baseURL string
	client  *http.Client
}

// NewMealDBProvider creates a TheMealDB lookup backend
func NewMealDBProvider(baseURL string, timeout time.Duration) *MealDBProvider {
	if baseURL == "" {
		baseURL = DefaultMealDBURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MealDBProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name
func (p *MealDBProvider) Name() string {
	return "mealdb"
}

type mealDBResponse struct {
	Meals []struct {
		ID    string `json:"idMeal"`
		Title string `json:"strMeal"`
		Thumb string `json:"strMealThumb"`
	} `json:"meals"`
}

// maxMealDBLookups bounds the number of filter.php calls per suggestion request
const maxMealDBLookups = 8

// Generate looks each ingredient up with filter.php (the free API key only
// filters on a single ingredient) and merges the answers. Meals matching more
// ingredients come first.
func (p *MealDBProvider) Generate(ctx context.Context, ingredients []string) (models.RecipeResult, error) {
	if len(ingredients) > maxMealDBLookups {
		ingredients = ingredients[:maxMealDBLookups]
	}

	var order []string
	seen := make(map[string]models.RecipeSuggestion)
	hits := make(map[string]int)
	for _, ingredient := range ingredients {
		found, err := p.lookup(ctx, ingredient)
		if err != nil {
			return models.RecipeResult{}, err
		}
		for _, meal := range found {
			if _, ok := seen[meal.ID]; !ok {
				seen[meal.ID] = meal
				order = append(order, meal.ID)
			}
			hits[meal.ID]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return hits[order[i]] > hits[order[j]]
	})
	meals := make([]models.RecipeSuggestion, 0, len(order))
	for _, id := range order {
		meals = append(meals, seen[id])
	}
	return models.RecipeResult{Meals: meals}, nil
}

func (p *MealDBProvider) lookup(ctx context.Context, ingredient string) ([]models.RecipeSuggestion, error) {
	u := fmt.Sprintf("%s/filter.php?i=%s", p.baseURL, url.QueryEscape(ingredient))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mealdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call mealdb: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read mealdb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mealdb API error %d: %s", resp.StatusCode, string(body))
	}

	var parsed mealDBResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse mealdb JSON: %w", err)
	}

	meals := make([]models.RecipeSuggestion, 0, len(parsed.Meals))
	for _, m := range parsed.Meals {
		meals = append(meals, models.RecipeSuggestion{
			ID:         m.ID,
			Title:      m.Title,
			ImageURL:   m.Thumb,
			SourceLink: mealPageURL + m.ID,
		})
	}
	return meals, nil
}
