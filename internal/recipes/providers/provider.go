package providers

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a home cook helping someone use up what is in their fridge."

// recipePrompt builds the instruction sent to text-generation backends
func recipePrompt(ingredients []string) string {
	return fmt.Sprintf(
		"I have the following ingredients in my fridge: %s.\n"+
			"Suggest up to three recipes that use mostly these ingredients. "+
			"For each recipe give a title, the ingredients with amounts, and short numbered steps.",
		strings.Join(ingredients, ", "),
	)
}
