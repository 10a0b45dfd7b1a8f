// Package server wires the application together: router, middleware, routes,
// and graceful shutdown.
//
// This is the composition root — every dependency (DB, OAuth provider,
// People client, services, handlers) is constructed and connected here, in
// one place, rather than scattered across the codebase. main.go stays
// minimal: load config, build a logger, call server.New, call Start.
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

	"github.com/sakif/birthday-board/internal/auth"
	"github.com/sakif/birthday-board/internal/config"
	"github.com/sakif/birthday-board/internal/handler"
	"github.com/sakif/birthday-board/internal/middleware"
	"github.com/sakif/birthday-board/internal/people"
	sqliteRepo "github.com/sakif/birthday-board/internal/repository/sqlite"
	"github.com/sakif/birthday-board/internal/service"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router      *chi.Mux
	cfg         config.Config
	templateDir string
	logger      *slog.Logger
	db          *sqliteRepo.DB // owned by the server, closed on shutdown
}

// New builds the full dependency graph and registers all routes.
//
// WIRING:
//
//	sqlite.DB ──────────────┬→ AuthService ───→ AuthHandler
//	GoogleProvider ─────────┤                   ContactsHandler
//	SessionService ─────────┤→ ContactService ↗
//	people.Client ──────────┘
//
// Each layer receives only what it needs: services get repository and client
// interfaces, handlers get services. Handlers never touch the database;
// services never touch HTTP.
func New(cfg config.Config, templateDir string, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:      chi.NewRouter(),
		cfg:         cfg,
		templateDir: templateDir,
		logger:      logger,
		db:          db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the handlers, and maps routes.
//
// ROUTE STRUCTURE:
//
//	GET  /                → login page (redirects to /dashboard when signed in)
//	GET  /dashboard       → dashboard page (redirects to / when anonymous)
//	GET  /auth/login      → 302 to Google's authorization URL
//	GET  /auth/callback   → token exchange + upsert + session cookie, 302 /dashboard
//	GET  /auth/logout     → clears the session cookie, 302 /
//	GET  /contacts/list   → JSON contact list, session required
//	POST /contacts/sync   → on-demand sync, session required
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	sessions, err := auth.NewSessionService(s.cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating session service: %w", err)
	}

	google := auth.NewGoogleProvider(
		s.cfg.GoogleClientID,
		s.cfg.GoogleClientSecret,
		s.cfg.GoogleRedirectURL,
	)
	connections := people.NewClient(google)

	authService := service.NewAuthService(google, s.db, sessions, s.logger)
	contactService := service.NewContactService(s.db, s.db, connections, s.logger)

	authHandler := handler.NewAuthHandler(google, authService, s.cfg.Production(), s.logger)
	contactsHandler := handler.NewContactsHandler(contactService, s.logger)

	pageHandler, err := handler.NewPageHandler(s.templateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	// Pages — session is optional; the handlers redirect based on presence.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalSession(sessions))
		r.Get("/", pageHandler.HandleIndex)
		r.Get("/dashboard", pageHandler.HandleDashboard)
	})

	// OAuth flow.
	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.HandleLogin)
		r.Get("/callback", authHandler.HandleCallback)
		r.Get("/logout", authHandler.HandleLogout)
	})

	// Protected API — 401 without a valid session cookie, before any
	// handler or backend work runs.
	s.router.Route("/contacts", func(r chi.Router) {
		r.Use(auth.RequireSession(sessions))
		r.Get("/list", contactsHandler.HandleList)
		r.Post("/sync", contactsHandler.HandleSync)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s to
// finish, close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("environment", s.cfg.Environment),
			slog.String("database", s.cfg.DBPath),
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
