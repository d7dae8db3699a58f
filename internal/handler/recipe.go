package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkaur/perfect-recipe/internal/apperror"
	"github.com/mkaur/perfect-recipe/internal/auth"
	"github.com/mkaur/perfect-recipe/internal/service"
	"github.com/mkaur/perfect-recipe/internal/spoonacular"
)

// searchParamNames are the query keys the search results route expects.
// Every key must be PRESENT on the request (the form always submits all of
// them); an individual key may be the empty string, meaning "no filter".
var searchParamNames = []string{
	"need_to_have", "max_time", "can_not_have", "intolerances", "diet", "cuisine", "type_food",
}

// RecipeHandler serves every recipe-facing route: home, search, detail,
// the save toggle, and a user's saves page.
type RecipeHandler struct {
	recipes     *service.RecipeService
	authService *service.AuthService
	logger      *slog.Logger
}

// NewRecipeHandler creates a RecipeHandler.
func NewRecipeHandler(recipes *service.RecipeService, authService *service.AuthService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:     recipes,
		authService: authService,
		logger:      logger,
	}
}

// RequireLogin guards routes that only make sense with a session.
//
// It runs after OptionalAuth has resolved the identity, so a context check
// is all that's needed. Anonymous requests are redirected to the login
// page with a flash notice — before the wrapped handler (and therefore any
// registry mutation) can run. Nothing behind this middleware is ever
// revealed to an anonymous request.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); !ok {
			setFlash(w, "please log in first!")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleHome shows random recipes, annotated with saved state when a user
// is logged in.
//
// HTTP: GET /
func (h *RecipeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())

	recipes, err := h.recipes.Home(r.Context(), viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notice":  popFlash(w, r),
		"recipes": recipes,
	})
}

// HandleSearchForm describes the search filter form.
//
// HTTP: GET /recipe/search
func (h *RecipeHandler) HandleSearchForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"notice": popFlash(w, r),
		"fields": []formField{
			{Name: "need_to_have", Type: "text", Label: "Must-have ingredients"},
			{Name: "max_time", Type: "number", Label: "Max cooking time (minutes)"},
			{Name: "can_not_have", Type: "text", Label: "Excluded ingredients"},
			{Name: "intolerances", Type: "text", Label: "Intolerances"},
			{Name: "diet", Type: "text", Label: "Diet"},
			{Name: "cuisine", Type: "text", Label: "Cuisine"},
			{Name: "type_food", Type: "text", Label: "Type of dish"},
		},
	})
}

// HandleSearchResults runs the pass-through search.
//
// HTTP: GET /recipe/search/results?need_to_have=...&max_time=...&...
//
// All seven keys must be present (the search form always submits the full
// set); a missing key is a malformed request, not an empty filter.
func (h *RecipeHandler) HandleSearchResults(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	for _, name := range searchParamNames {
		if !query.Has(name) {
			writeError(w, apperror.ValidationFailed(name, "missing search parameter "+name))
			return
		}
	}

	filters := spoonacular.SearchFilters{
		IncludeIngredients: query.Get("need_to_have"),
		MaxReadyTime:       query.Get("max_time"),
		ExcludeIngredients: query.Get("can_not_have"),
		Intolerances:       query.Get("intolerances"),
		Diet:               query.Get("diet"),
		Cuisine:            query.Get("cuisine"),
		Type:               query.Get("type_food"),
	}

	viewerID, _ := auth.UserIDFromContext(r.Context())
	results, err := h.recipes.Search(r.Context(), viewerID, filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"recipes": results})
}

// HandleRecipeDetail shows one recipe with stripped instructions and a few
// similar recipes.
//
// HTTP: GET /recipe/{recipeID}
func (h *RecipeHandler) HandleRecipeDetail(w http.ResponseWriter, r *http.Request) {
	recipeID, err := parseID(chi.URLParam(r, "recipeID"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("recipeID", "recipe id must be a positive integer"))
		return
	}

	viewerID, _ := auth.UserIDFromContext(r.Context())
	page, err := h.recipes.Detail(r.Context(), viewerID, recipeID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleToggleSave flips the save state of a recipe for the current user
// and sends them home.
//
// HTTP: POST /recipe/{recipeID}/save
// Auth: RequireLogin — anonymous requests never reach this handler.
func (h *RecipeHandler) HandleToggleSave(w http.ResponseWriter, r *http.Request) {
	recipeID, err := parseID(chi.URLParam(r, "recipeID"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("recipeID", "recipe id must be a positive integer"))
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	saved, err := h.recipes.ToggleSave(r.Context(), userID, recipeID)
	if err != nil {
		writeError(w, err)
		return
	}

	if saved {
		setFlash(w, "recipe saved!")
	} else {
		setFlash(w, "recipe removed from your saves")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleUserSaves lists a user's saved recipes with full details per id.
//
// HTTP: GET /user/{userID}/saves
// Auth: RequireLogin. Any authenticated user may view any user's list —
// saves pages act as member-visible profiles.
func (h *RecipeHandler) HandleUserSaves(w http.ResponseWriter, r *http.Request) {
	ownerID, err := parseID(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("userID", "user id must be a positive integer"))
		return
	}

	// Unknown owner is a plain 404, not an empty list.
	owner, err := h.authService.GetUserByID(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	viewerID, _ := auth.UserIDFromContext(r.Context())
	recipes, err := h.recipes.SavedRecipes(r.Context(), ownerID, viewerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notice":   popFlash(w, r),
		"username": owner.Username,
		"recipes":  recipes,
	})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
