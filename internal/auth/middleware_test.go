package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/mkaur/perfect-recipe/internal/apperror"
	"github.com/mkaur/perfect-recipe/internal/model"
)

// stubUserRepo answers GetByID from a fixed set of ids; the other
// repository methods are never reached by the middleware.
type stubUserRepo struct {
	existing map[int64]bool
	err      error
}

func (s *stubUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (s *stubUserRepo) Update(ctx context.Context, user *model.User) error { return nil }

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, apperror.NotFound("user", 0)
}

func (s *stubUserRepo) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return nil, apperror.NotFound("user", 0)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !s.existing[id] {
		return nil, apperror.NotFound("user", id)
	}
	return &model.User{ID: id}, nil
}

// resolveUserID runs one request through OptionalAuth and reports what the
// downstream handler saw in the context.
func resolveUserID(t *testing.T, tokens *TokenService, users *stubUserRepo, cookie *http.Cookie) (int64, bool) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	var gotID int64
	var gotOK bool
	handler := OptionalAuth(tokens, users, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	return gotID, gotOK
}

func TestOptionalAuthResolvesValidSession(t *testing.T) {
	tokens, err := NewTokenService("test-secret-0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	token, err := tokens.Generate(7)
	if err != nil {
		t.Fatal(err)
	}

	users := &stubUserRepo{existing: map[int64]bool{7: true}}
	id, ok := resolveUserID(t, tokens, users, &http.Cookie{Name: SessionCookieName, Value: token})

	if !ok || id != 7 {
		t.Errorf("got (%d, %v), want (7, true)", id, ok)
	}
}

func TestOptionalAuthAnonymousCases(t *testing.T) {
	tokens, err := NewTokenService("test-secret-0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	validToken, err := tokens.Generate(7)
	if err != nil {
		t.Fatal(err)
	}
	expiredToken, err := tokens.GenerateWithDuration(7, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		users  *stubUserRepo
		cookie *http.Cookie
	}{
		{
			name:  "no cookie",
			users: &stubUserRepo{existing: map[int64]bool{7: true}},
		},
		{
			name:   "garbage token",
			users:  &stubUserRepo{existing: map[int64]bool{7: true}},
			cookie: &http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"},
		},
		{
			name:   "expired token",
			users:  &stubUserRepo{existing: map[int64]bool{7: true}},
			cookie: &http.Cookie{Name: SessionCookieName, Value: expiredToken},
		},
		{
			name:   "valid token, user deleted",
			users:  &stubUserRepo{existing: map[int64]bool{}},
			cookie: &http.Cookie{Name: SessionCookieName, Value: validToken},
		},
		{
			name:   "valid token, user lookup fails",
			users:  &stubUserRepo{err: errors.New("disk on fire")},
			cookie: &http.Cookie{Name: SessionCookieName, Value: validToken},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := resolveUserID(t, tokens, tt.users, tt.cookie)
			if ok || id != 0 {
				t.Errorf("got (%d, %v), want anonymous", id, ok)
			}
		})
	}
}
