// Package service — business logic, between the HTTP handlers and the
// repositories.
//
// AuthService owns account rules: signup validation, the uniform login
// outcome, GitHub upserts. It knows nothing about HTTP — handlers set
// cookies and statuses, services decide what happened.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mkaur/perfect-recipe/internal/apperror"
	"github.com/mkaur/perfect-recipe/internal/auth"
	"github.com/mkaur/perfect-recipe/internal/model"
	"github.com/mkaur/perfect-recipe/internal/repository"
)

// loginFailedMsg is the single message for every login failure. Unknown
// username and wrong password are deliberately indistinguishable — the form
// must not leak which half was wrong.
const loginFailedMsg = "sorry, we don't recognize that username/password combo"

// dummyHash is a bcrypt hash of a throwaway string. When a login names a
// user that doesn't exist we still verify against this, so the
// unknown-user path costs the same as the wrong-password path.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// minPasswordLength matches the signup form contract.
const minPasswordLength = 8

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued session token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup creates a new account and logs it in.
//
// The raw password is bcrypt-hashed before anything touches the database;
// only the hash is stored. Username/email collisions surface as
// apperror.ErrConflict from the repository's UNIQUE constraints and pass
// through to the handler, which re-renders the signup form with the notice.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	// Rune count, not byte count — a multibyte password is as long as the
	// user typed it, not as long as its UTF-8 encoding.
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		// Only over-length passwords reach here; empty ones fail the
		// minimum above.
		return nil, apperror.ValidationFailed("password", "password must be 72 characters or fewer")
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user signed up",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.login(user)
}

// Authenticate checks a username/password pair.
//
// Both failure cases — no such user, wrong password — return the same
// apperror.ErrUnauthorized with the same message, and both run a bcrypt
// comparison so they take the same time.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = s.passwords.Verify(dummyHash, password)
			return nil, apperror.Unauthorized(loginFailedMsg)
		}
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", username, err)
	}

	// GitHub-only accounts have no hash; Verify fails on the empty string,
	// which lands in the same uniform outcome below.
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(loginFailedMsg)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.login(user)
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: first login
// creates an account (no password hash), subsequent logins refresh the
// email in case it changed on GitHub.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetByGitHubID(ctx, ghUser.ID)
	switch {
	case err == nil:
		if ghUser.Email != "" && ghUser.Email != user.Email {
			user.Email = ghUser.Email
			if err := s.users.Update(ctx, user); err != nil {
				// A colliding email on refresh isn't worth failing the
				// login over; keep the old one.
				s.logger.Warn("refreshing GitHub email failed",
					slog.Int64("userID", user.ID),
					slog.String("error", err.Error()),
				)
			}
		}

	case errors.Is(err, apperror.ErrNotFound):
		user, err = s.registerGitHub(ctx, ghUser)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("service/auth: looking up GitHub user %d: %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.login(user)
}

// registerGitHub creates the local account for a first-time GitHub login.
// If the GitHub login name is already taken as a username here, a suffix
// derived from the GitHub id disambiguates.
func (s *AuthService) registerGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, error) {
	email := ghUser.Email
	if email == "" {
		// GitHub lets users hide their email; synthesize a unique one to
		// satisfy the NOT NULL UNIQUE column.
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", ghUser.ID, ghUser.Login)
	}

	user := &model.User{
		Username: ghUser.Login,
		Email:    email,
		GitHubID: ghUser.ID,
	}
	err := s.users.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrConflict) {
		return nil, fmt.Errorf("service/auth: creating GitHub user %q: %w", ghUser.Login, err)
	}

	user.Username = fmt.Sprintf("%s-%d", ghUser.Login, ghUser.ID)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating GitHub user %q: %w", user.Username, err)
	}
	return user, nil
}

// GetUserByID returns the user for the given id. Used by the /api/me
// handler after the middleware resolves the session.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", id, err)
	}
	return user, nil
}

func (s *AuthService) login(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
