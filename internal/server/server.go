// Package server is the composition root: it wires the database, services,
// and handlers together, defines every route, and owns the HTTP listener's
// lifecycle including graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/deck-hub/internal/auth"
	"github.com/sakif/deck-hub/internal/config"
	"github.com/sakif/deck-hub/internal/handler"
	"github.com/sakif/deck-hub/internal/middleware"
	sqliteRepo "github.com/sakif/deck-hub/internal/repository/sqlite"
	"github.com/sakif/deck-hub/internal/scryfall"
	"github.com/sakif/deck-hub/internal/service"
)

// Server holds the router and the resources it must release on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// DB → repositories → services → handlers → routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("server: JWT_SECRET is required")
	}

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

// setupRoutes wires middleware, services, and every route.
//
// Route map:
//
//	POST   /auth/register                     → create account
//	POST   /auth/login                        → email/password login
//	POST   /auth/logout                       → clear token cookie
//	GET    /auth/github/login                 → start OAuth flow (if configured)
//	GET    /auth/github/callback              → finish OAuth flow
//	GET    /healthz                           → liveness probe
//
// Authenticated:
//
//	GET    /api/me                            → current user
//	GET    /api/cards?q=                      → search cached cards
//	GET    /api/cards/{cardID}                → get cached card
//	POST   /api/cards/fetch                   → resolve catalog card into cache
//	CRUD   /api/decks, /api/decks/{deckID}    → deck management
//	POST   /api/decks/{deckID}/cards          → add card to zone
//	PUT    /api/decks/{deckID}/cards/{cardID} → set exact quantity
//	DELETE /api/decks/{deckID}/cards/{cardID} → remove card
//	CRUD   /api/folders, /api/folders/{folderID}
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	catalog := scryfall.NewClient(s.config.ScryfallBaseURL)

	authService := service.NewAuthService(s.db, passwords, tokens, s.logger)
	cardService := service.NewCardService(s.db, catalog, s.logger)
	deckService := service.NewDeckService(s.db, s.db, cardService, s.logger)
	folderService := service.NewFolderService(s.db, s.db, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	cardHandler := handler.NewCardHandler(cardService)
	deckHandler := handler.NewDeckHandler(deckService)
	folderHandler := handler.NewFolderHandler(folderService)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.Get("/cards", cardHandler.HandleSearch)
		r.Get("/cards/{cardID}", cardHandler.HandleGet)
		r.Post("/cards/fetch", cardHandler.HandleFetch)

		r.Get("/decks", deckHandler.HandleList)
		r.Post("/decks", deckHandler.HandleCreate)
		r.Get("/decks/{deckID}", deckHandler.HandleGet)
		r.Patch("/decks/{deckID}", deckHandler.HandleUpdate)
		r.Delete("/decks/{deckID}", deckHandler.HandleDelete)

		r.Post("/decks/{deckID}/cards", deckHandler.HandleAddCard)
		r.Put("/decks/{deckID}/cards/{cardID}", deckHandler.HandleSetCardQuantity)
		r.Delete("/decks/{deckID}/cards/{cardID}", deckHandler.HandleRemoveCard)

		r.Get("/folders", folderHandler.HandleList)
		r.Post("/folders", folderHandler.HandleCreate)
		r.Get("/folders/{folderID}", folderHandler.HandleGet)
		r.Patch("/folders/{folderID}", folderHandler.HandleUpdate)
		r.Delete("/folders/{folderID}", folderHandler.HandleDelete)
	})

	return nil
}

// Handler exposes the router, mainly for tests that drive the server with
// httptest instead of a real listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's database connection.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

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
