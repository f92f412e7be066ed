package models

import "encoding/json"

// RecipeSuggestion is a recipe proposed by a lookup backend
type RecipeSuggestion struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ImageURL   string `json:"imageUrl"`
	SourceLink string `json:"sourceLink"`
}

// RecipeResult carries whatever the configured backend produced. Lookup backends
// fill Meals, text-generation backends fill Text.
type RecipeResult struct {
	Meals []RecipeSuggestion `json:"meals,omitempty"`
	Text  string             `json:"recipes,omitempty"`
}

// Empty reports whether the backend produced nothing
func (r RecipeResult) Empty() bool {
	return len(r.Meals) == 0 && r.Text == ""
}

// MarshalJSON renders {"recipes": text} for text backends and {"meals": [...]}
// otherwise, with an empty list rather than null.
func (r RecipeResult) MarshalJSON() ([]byte, error) {
	if r.Text != "" {
		return json.Marshal(struct {
			Text string `json:"recipes"`
		}{r.Text})
	}
	meals := r.Meals
	if meals == nil {
		meals = []RecipeSuggestion{}
	}
	return json.Marshal(struct {
		Meals []RecipeSuggestion `json:"meals"`
	}{meals})
}
