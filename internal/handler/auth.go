package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/mkaur/perfect-recipe/internal/auth"
	"github.com/mkaur/perfect-recipe/internal/service"
)

// AuthHandler manages signup, login/logout, and the GitHub OAuth flow.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup / HandleLogin  → validate the form, set the session cookie
//   - HandleLogout                → clear the session cookie, flash a notice
//   - HandleGitHubLogin/Callback  → OAuth round-trip
//   - HandleMe                    → current user's profile
//
// Handlers own the HTTP edges — cookies, redirects, statuses. Everything
// else is AuthService's job.
type AuthHandler struct {
	authService *service.AuthService
	github      *auth.GitHubProvider // nil when OAuth is not configured
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil, in which case
// the OAuth routes are not registered.
func NewAuthHandler(authService *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		github:      github,
		logger:      logger,
	}
}

// formField describes one input of a signup/login form. The frontend owns
// rendering; we just tell it what to render.
type formField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	MinLen   int    `json:"minLength,omitempty"`
}

// HandleSignupForm describes the signup form.
//
// HTTP: GET /signup
func (h *AuthHandler) HandleSignupForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"notice": popFlash(w, r),
		"fields": []formField{
			{Name: "username", Type: "text", Label: "Username", Required: true},
			{Name: "email", Type: "email", Label: "Email", Required: true},
			{Name: "password", Type: "password", Label: "Password", Required: true, MinLen: 8},
		},
	})
}

// HandleSignup creates a new account and logs it in.
//
// HTTP: POST /signup (form fields: username, email, password)
//
// A duplicate username or email comes back as 409 with the field named, so
// the form can re-render with the notice. Success sets the session cookie
// and redirects home, like any classic post-signup flow.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Signup(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLoginForm describes the login form.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"notice": popFlash(w, r),
		"fields": []formField{
			{Name: "username", Type: "text", Label: "Username", Required: true},
			{Name: "password", Type: "password", Label: "Password", Required: true, MinLen: 8},
		},
	})
}

// HandleLogin authenticates an existing user.
//
// HTTP: POST /login (form fields: username, password)
//
// Every failure — unknown username, wrong password — produces the same 401
// and the same message. The service guarantees that; we just pass it on.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form data", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Authenticate(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("password"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie. Idempotent — logging out twice
// is fine.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	setFlash(w, "you've been logged out. let's cook again soon!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// The random state lands in a short-lived cookie; the callback checks
// GitHub echoed it back (CSRF protection).
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("github callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// User denied authorization on GitHub's side.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		setFlash(w, "github login was cancelled")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.authService.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("github callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	auth.SetSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
