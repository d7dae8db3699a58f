package repository

import (
	"context"

	"github.com/mkaur/perfect-recipe/internal/model"
)

// UserRepository persists user accounts.
//
// Create fails with apperror.ErrConflict when username or email collides
// with an existing row; lookups fail with apperror.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// SaveRepository persists the (user, recipe) favorites join table.
//
// The storage layer enforces UNIQUE(user_id, recipe_id), so Insert on an
// already-saved pair returns apperror.ErrConflict rather than a duplicate.
// (Named Insert, not Create, so one storage type can implement both this
// interface and UserRepository.)
type SaveRepository interface {
	Insert(ctx context.Context, save *model.Save) error
	Delete(ctx context.Context, userID, recipeID int64) error
	IsSaved(ctx context.Context, userID, recipeID int64) (bool, error)
	// SavedSet returns every recipe id the user has saved, as a set.
	// Listings use it to annotate a whole page with one query.
	SavedSet(ctx context.Context, userID int64) (map[int64]bool, error)
	// ListSaved returns the user's saved recipe ids in insertion order.
	ListSaved(ctx context.Context, userID int64) ([]int64, error)
}
