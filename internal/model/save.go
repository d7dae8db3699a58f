package model

import "time"

// Save is the join record marking that a user has favorited a recipe.
//
// RecipeID is the upstream Spoonacular recipe ID — we never persist recipe
// content locally, only the identifier. The DB enforces
// UNIQUE(user_id, recipe_id), so a user can hold at most one save per
// recipe even if two toggle requests race.
//
// user_id carries ON DELETE CASCADE: deleting a user removes their saves.
type Save struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	RecipeID  int64     `json:"recipeId"`
	CreatedAt time.Time `json:"createdAt"`
}
