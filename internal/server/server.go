// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the "wiring" layer — the composition root where every dependency
// is created and connected in one place:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Handlers never touch the database directly; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mkaur/perfect-recipe/internal/auth"
	"github.com/mkaur/perfect-recipe/internal/handler"
	"github.com/mkaur/perfect-recipe/internal/middleware"
	sqliteRepo "github.com/mkaur/perfect-recipe/internal/repository/sqlite"
	"github.com/mkaur/perfect-recipe/internal/service"
	"github.com/mkaur/perfect-recipe/internal/spoonacular"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port          int
	DBPath        string
	SessionSecret string

	// Spoonacular API
	SpoonacularAPIKey  string
	SpoonacularBaseURL string // empty = production API; tests point it at a fake

	// GitHub OAuth (optional — routes are skipped when unset)
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, builds the dependency chain,
// and registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes builds the dependency chain and maps every route.
//
// ROUTE STRUCTURE:
//
//	GET  /                        → random recipes, annotated
//	GET  /signup    POST /signup  → signup form descriptor / create account
//	GET  /login     POST /login   → login form descriptor / authenticate
//	GET  /logout                  → clear session
//	GET  /recipe/search           → search form descriptor
//	GET  /recipe/search/results   → pass-through search, annotated
//	GET  /recipe/{recipeID}       → detail + similar, annotated
//	POST /recipe/{recipeID}/save  → toggle save          [login required]
//	GET  /user/{userID}/saves     → a user's saved list  [login required]
//	GET  /api/me                  → current user profile
//	GET  /auth/github/login|callback → OAuth             [if configured]
//
// MIDDLEWARE ORDER MATTERS: RequestID and RealIP first so the logger can
// use them, Recoverer before anything that might panic, then OptionalAuth
// so every handler below sees the resolved identity in the context.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	gatewayCfg := spoonacular.DefaultConfig(s.config.SpoonacularAPIKey)
	if s.config.SpoonacularBaseURL != "" {
		gatewayCfg.BaseURL = s.config.SpoonacularBaseURL
	}
	gateway := spoonacular.New(gatewayCfg, s.logger)

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	recipeService := service.NewRecipeService(gateway, s.db, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, authService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.OptionalAuth(tokens, s.db, s.logger))

	s.router.Get("/", recipeHandler.HandleHome)

	s.router.Get("/signup", authHandler.HandleSignupForm)
	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Get("/login", authHandler.HandleLoginForm)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/logout", authHandler.HandleLogout)
	s.router.Get("/api/me", authHandler.HandleMe)

	s.router.Get("/recipe/search", recipeHandler.HandleSearchForm)
	s.router.Get("/recipe/search/results", recipeHandler.HandleSearchResults)
	s.router.Get("/recipe/{recipeID}", recipeHandler.HandleRecipeDetail)
	s.router.With(handler.RequireLogin).Post("/recipe/{recipeID}/save", recipeHandler.HandleToggleSave)
	s.router.With(handler.RequireLogin).Get("/user/{userID}/saves", recipeHandler.HandleUserSaves)

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	} else {
		s.logger.Warn("GitHub OAuth not configured — /auth/github routes disabled")
	}

	return nil
}

// Handler exposes the router. Used by httptest-based tests to drive the
// full middleware + route stack without a listening socket.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources. Start calls this on shutdown;
// tests call it directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new connections
// 2. Wait up to 30s for in-flight requests
// 3. Close the database (flushes the WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
