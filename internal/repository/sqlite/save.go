package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mkaur/perfect-recipe/internal/apperror"
	"github.com/mkaur/perfect-recipe/internal/model"
	"github.com/mkaur/perfect-recipe/internal/repository"
)

// compile-time check that *DB implements repository.SaveRepository
var _ repository.SaveRepository = (*DB)(nil)

// Insert adds a save row. A second save of the same (user, recipe) pair
// hits the UNIQUE(user_id, recipe_id) constraint and comes back as
// apperror.ErrConflict — the toggle logic treats that as "already saved"
// rather than an internal failure, so racing toggles can't duplicate rows.
func (db *DB) Insert(ctx context.Context, save *model.Save) error {
	save.CreatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO saves (user_id, recipe_id, created_at) VALUES (?, ?, ?)`,
		save.UserID,
		save.RecipeID,
		save.CreatedAt,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperror.Conflict("recipe", "recipe is already saved")
		}
		return fmt.Errorf("sqlite: inserting save (user=%d recipe=%d): %w",
			save.UserID, save.RecipeID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new save id: %w", err)
	}
	save.ID = id

	return nil
}

// Delete removes the save for (userID, recipeID). Deleting a save that
// doesn't exist is not an error — the end state is the same.
func (db *DB) Delete(ctx context.Context, userID, recipeID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM saves WHERE user_id = ? AND recipe_id = ?`,
		userID, recipeID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting save (user=%d recipe=%d): %w", userID, recipeID, err)
	}
	return nil
}

// IsSaved reports whether the user has saved the recipe. This is an indexed
// point lookup on the UNIQUE(user_id, recipe_id) index, not a scan of the
// user's save list.
func (db *DB) IsSaved(ctx context.Context, userID, recipeID int64) (bool, error) {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM saves WHERE user_id = ? AND recipe_id = ?)`,
		userID, recipeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking save (user=%d recipe=%d): %w", userID, recipeID, err)
	}
	return exists == 1, nil
}

// SavedSet returns all of the user's saved recipe ids as a set, so a
// listing page can annotate every card with one query.
func (db *DB) SavedSet(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT recipe_id FROM saves WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading saved set for user %d: %w", userID, err)
	}
	defer rows.Close()

	set := make(map[int64]bool)
	for rows.Next() {
		var recipeID int64
		if err := rows.Scan(&recipeID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning saved recipe id: %w", err)
		}
		set[recipeID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating saved set: %w", err)
	}

	return set, nil
}

// ListSaved returns the user's saved recipe ids in insertion order.
func (db *DB) ListSaved(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT recipe_id FROM saves WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing saves for user %d: %w", userID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var recipeID int64
		if err := rows.Scan(&recipeID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning saved recipe id: %w", err)
		}
		ids = append(ids, recipeID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating saves: %w", err)
	}

	return ids, nil
}
