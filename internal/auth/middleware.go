package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkaur/perfect-recipe/internal/apperror"
	"github.com/mkaur/perfect-recipe/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write the
// user id in the context — no other package can collide with it.
type contextKey string

const userIDKey contextKey = "userID"

// OptionalAuth resolves the current user before any handler runs.
//
// It reads the session cookie, validates the token, and confirms the user
// row still exists before putting the id in the request context. Every
// failure mode — no cookie, expired token, tampered token, deleted user —
// resolves silently to "no user": the request continues as anonymous.
//
// Handlers and route middleware read the identity with UserIDFromContext;
// the identity is carried explicitly in the context rather than any
// request-scoped global.
func OptionalAuth(tokens *TokenService, users repository.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil || userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			// The token can outlive the account. A session pointing at a
			// deleted user resolves to anonymous, not an error.
			if _, err := users.GetByID(r.Context(), userID); err != nil {
				if !errors.Is(err, apperror.ErrNotFound) {
					logger.Error("resolving session user",
						slog.Int64("userID", userID),
						slog.String("error", err.Error()),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context.
//
// Returns (0, false) if the request is anonymous.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id != 0
}

// extractUserID reads the session cookie and validates its token.
func extractUserID(r *http.Request, tokens *TokenService) (int64, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		// http.ErrNoCookie — not an error, just anonymous
		return 0, err
	}

	return tokens.Validate(cookie.Value)
}
