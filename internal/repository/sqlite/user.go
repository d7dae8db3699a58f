package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkaur/perfect-recipe/internal/apperror"
	"github.com/mkaur/perfect-recipe/internal/model"
	"github.com/mkaur/perfect-recipe/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, github_id, created_at, updated_at`

// Create inserts a new user row and fills in ID and timestamps.
//
// The UNIQUE constraints on username and email are the source of truth for
// the uniqueness invariant — we don't pre-check with a SELECT, because two
// concurrent signups could both pass that check and still collide. Instead
// we insert and translate the constraint failure into apperror.ErrConflict
// naming the colliding field.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.GitHubID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if column, ok := isUniqueViolation(err); ok {
			switch column {
			case "email":
				return apperror.Conflict("email", "this email is already registered")
			default:
				return apperror.Conflict("username", "sorry, this username is already taken!")
			}
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by their numeric ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by exact username match.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetByGitHubID retrieves a user by their GitHub account id.
func (db *DB) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE github_id = ? AND github_id != 0`, githubID)
}

// Update rewrites the mutable profile fields of an existing user.
// Used by the OAuth flow to refresh email on subsequent logins.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, updated_at = ? WHERE id = ?`,
		user.Email,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return apperror.Conflict("email", "this email is already registered")
		}
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}
	return nil
}

func (db *DB) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.GitHubID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: "user not found",
			}
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}
