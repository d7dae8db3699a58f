// Spoonacular API response types based on https://spoonacular.com/food-api/docs
package spoonacular

// RecipeSummary is the minimal recipe record returned by list-style
// endpoints (random, complexSearch, similar). The similar endpoint omits
// the image URL, so Image may be empty there.
type RecipeSummary struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Image          string `json:"image"`
	ReadyInMinutes int    `json:"readyInMinutes,omitempty"`
}

// Ingredient is one entry of a recipe's extended ingredient list.
type Ingredient struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Original string  `json:"original"` // full display text, e.g. "2 cups flour"
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
}

// RecipeDetail is the full record from GET /recipes/{id}/information.
//
// Instructions holds the raw upstream value, which is HTML markup.
// Use PlainInstructions to get the stripped display text.
type RecipeDetail struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Image          string       `json:"image"`
	ReadyInMinutes int          `json:"readyInMinutes"`
	Servings       int          `json:"servings"`
	SourceURL      string       `json:"sourceUrl"`
	Summary        string       `json:"summary"`
	Instructions   string       `json:"instructions"`
	Ingredients    []Ingredient `json:"extendedIngredients"`
}

// ToSummary converts a detail record to its list-style shape. Used by the
// saves page, which fetches full details per saved id but renders cards.
func (d *RecipeDetail) ToSummary() RecipeSummary {
	return RecipeSummary{
		ID:             d.ID,
		Title:          d.Title,
		Image:          d.Image,
		ReadyInMinutes: d.ReadyInMinutes,
	}
}

// randomResponse / searchResponse mirror the envelope objects the upstream
// wraps its lists in. The similar endpoint returns a bare JSON array.
type randomResponse struct {
	Recipes []RecipeSummary `json:"recipes"`
}

type searchResponse struct {
	Results []RecipeSummary `json:"results"`
}

// SearchFilters are the optional complexSearch parameters we pass through.
// A zero-value ("") field is omitted from the upstream query entirely —
// Spoonacular treats an empty-valued parameter as a real (broken) filter.
type SearchFilters struct {
	IncludeIngredients string
	MaxReadyTime       string
	ExcludeIngredients string
	Intolerances       string
	Diet               string
	Cuisine            string
	Type               string
}
