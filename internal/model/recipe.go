package model

import "github.com/mkaur/perfect-recipe/internal/spoonacular"

// AnnotatedRecipe is a recipe summary with the viewer's saved state attached.
//
// The saved flag lives ON the record, not in a parallel slice. A separate
// booleans-by-position slice desynchronizes the moment iteration order
// changes; embedding the flag makes that impossible.
type AnnotatedRecipe struct {
	spoonacular.RecipeSummary
	Saved bool `json:"saved"`
}

// RecipeView is the upstream detail record as pages serialize it. The
// shadowing field suppresses the embedded raw HTML instructions — clients
// only ever see the stripped text RecipePage carries.
type RecipeView struct {
	spoonacular.RecipeDetail
	Instructions string `json:"-"`
}

// RecipePage is the recipe detail view: full upstream record, instructions
// already stripped to plain text, and a short list of similar recipes.
type RecipePage struct {
	Recipe       RecipeView        `json:"recipe"`
	Instructions string            `json:"instructions"`
	Saved        bool              `json:"saved"`
	Similar      []AnnotatedRecipe `json:"similar"`
}
