package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkaur/perfect-recipe/internal/apperror"
	"github.com/mkaur/perfect-recipe/internal/model"
	"github.com/mkaur/perfect-recipe/internal/repository"
	"github.com/mkaur/perfect-recipe/internal/spoonacular"
)

// homeRecipeCount is how many random recipes the home page shows.
const homeRecipeCount = 12

// similarRecipeCount is how many similar recipes a detail page shows.
const similarRecipeCount = 3

// RecipeGateway is the slice of the upstream client this service needs.
// Tests substitute a fake; production wires *spoonacular.Client.
type RecipeGateway interface {
	Random(ctx context.Context, n int) ([]spoonacular.RecipeSummary, error)
	Search(ctx context.Context, filters spoonacular.SearchFilters) ([]spoonacular.RecipeSummary, error)
	Details(ctx context.Context, recipeID int64) (*spoonacular.RecipeDetail, error)
	Similar(ctx context.Context, recipeID int64, n int) ([]spoonacular.RecipeSummary, error)
}

// RecipeService combines the upstream gateway with the local save registry:
// it fetches listings, stamps each recipe with the viewer's saved state,
// and owns the save/unsave toggle.
//
// viewerID 0 means "anonymous" throughout — listings come back with every
// Saved flag false and no registry query is made.
type RecipeService struct {
	gateway RecipeGateway
	saves   repository.SaveRepository
	logger  *slog.Logger
}

// NewRecipeService creates a RecipeService.
func NewRecipeService(gateway RecipeGateway, saves repository.SaveRepository, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		gateway: gateway,
		saves:   saves,
		logger:  logger,
	}
}

// Home returns the random recipes for the front page, annotated.
func (s *RecipeService) Home(ctx context.Context, viewerID int64) ([]model.AnnotatedRecipe, error) {
	recipes, err := s.gateway.Random(ctx, homeRecipeCount)
	if err != nil {
		return nil, fmt.Errorf("service/recipe: fetching random recipes: %w", err)
	}
	return s.annotate(ctx, viewerID, recipes)
}

// Search passes the filters through to the upstream and annotates the
// results. No local filtering or ranking happens here.
func (s *RecipeService) Search(ctx context.Context, viewerID int64, filters spoonacular.SearchFilters) ([]model.AnnotatedRecipe, error) {
	recipes, err := s.gateway.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("service/recipe: searching recipes: %w", err)
	}
	return s.annotate(ctx, viewerID, recipes)
}

// Detail builds the full recipe page: the record with instructions already
// stripped to plain text, plus three similar recipes, all annotated.
func (s *RecipeService) Detail(ctx context.Context, viewerID, recipeID int64) (*model.RecipePage, error) {
	detail, err := s.gateway.Details(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("service/recipe: fetching recipe %d: %w", recipeID, err)
	}

	similar, err := s.gateway.Similar(ctx, recipeID, similarRecipeCount)
	if err != nil {
		return nil, fmt.Errorf("service/recipe: fetching similar recipes for %d: %w", recipeID, err)
	}

	annotatedSimilar, err := s.annotate(ctx, viewerID, similar)
	if err != nil {
		return nil, err
	}

	saved := false
	if viewerID != 0 {
		saved, err = s.saves.IsSaved(ctx, viewerID, recipeID)
		if err != nil {
			return nil, fmt.Errorf("service/recipe: checking saved state of %d: %w", recipeID, err)
		}
	}

	return &model.RecipePage{
		Recipe:       model.RecipeView{RecipeDetail: *detail},
		Instructions: detail.PlainInstructions(),
		Saved:        saved,
		Similar:      annotatedSimilar,
	}, nil
}

// ToggleSave flips the saved state of (userID, recipeID) and reports the
// new state: true if the recipe is now saved, false if it was removed.
//
// The caller must supply a real authenticated user id — the handler layer
// rejects anonymous requests before this runs.
//
// The read-then-write pair can race with itself across requests; the
// UNIQUE(user_id, recipe_id) constraint is the backstop. A conflicting
// insert means another request saved it first, so the end state is simply
// "saved".
func (s *RecipeService) ToggleSave(ctx context.Context, userID, recipeID int64) (bool, error) {
	if userID == 0 {
		return false, apperror.Unauthorized("you must be logged in to save recipes")
	}

	saved, err := s.saves.IsSaved(ctx, userID, recipeID)
	if err != nil {
		return false, fmt.Errorf("service/recipe: checking save (user=%d recipe=%d): %w", userID, recipeID, err)
	}

	if saved {
		if err := s.saves.Delete(ctx, userID, recipeID); err != nil {
			return false, fmt.Errorf("service/recipe: removing save (user=%d recipe=%d): %w", userID, recipeID, err)
		}
		s.logger.Info("recipe unsaved",
			slog.Int64("userID", userID),
			slog.Int64("recipeID", recipeID),
		)
		return false, nil
	}

	save := &model.Save{UserID: userID, RecipeID: recipeID}
	if err := s.saves.Insert(ctx, save); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return true, nil
		}
		return false, fmt.Errorf("service/recipe: adding save (user=%d recipe=%d): %w", userID, recipeID, err)
	}
	s.logger.Info("recipe saved",
		slog.Int64("userID", userID),
		slog.Int64("recipeID", recipeID),
	)
	return true, nil
}

// SavedRecipes returns the owner's saved recipes with full details fetched
// per id, in the order they were saved. Annotation is relative to the
// viewer, who isn't necessarily the owner.
func (s *RecipeService) SavedRecipes(ctx context.Context, ownerID, viewerID int64) ([]model.AnnotatedRecipe, error) {
	ids, err := s.saves.ListSaved(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/recipe: listing saves for user %d: %w", ownerID, err)
	}

	summaries := make([]spoonacular.RecipeSummary, 0, len(ids))
	for _, id := range ids {
		detail, err := s.gateway.Details(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("service/recipe: fetching saved recipe %d: %w", id, err)
		}
		summaries = append(summaries, detail.ToSummary())
	}

	return s.annotate(ctx, viewerID, summaries)
}

// annotate stamps each recipe with whether the viewer has saved it. The
// flag lives on the record itself; one SavedSet query covers the whole
// listing.
func (s *RecipeService) annotate(ctx context.Context, viewerID int64, recipes []spoonacular.RecipeSummary) ([]model.AnnotatedRecipe, error) {
	annotated := make([]model.AnnotatedRecipe, len(recipes))

	var saved map[int64]bool
	if viewerID != 0 && len(recipes) > 0 {
		var err error
		saved, err = s.saves.SavedSet(ctx, viewerID)
		if err != nil {
			return nil, fmt.Errorf("service/recipe: loading saved set for user %d: %w", viewerID, err)
		}
	}

	for i, r := range recipes {
		annotated[i] = model.AnnotatedRecipe{
			RecipeSummary: r,
			Saved:         saved[r.ID],
		}
	}

	return annotated, nil
}
