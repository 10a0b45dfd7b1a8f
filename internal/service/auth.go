// Package service contains the business logic layer of the application.
//
// THE LAYERING:
//
//	Handler (HTTP)   → parses requests, writes responses, maps errors to statuses
//	Service (rules)  → orchestrates providers and repositories, owns the pipelines
//	Repository (DB)  → reads/writes rows
//
// Services accept interfaces and primitives, never *http.Request, so the
// login and sync flows are testable with plain function calls against fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/sakif/birthday-board/internal/apperror"
	"github.com/sakif/birthday-board/internal/auth"
	"github.com/sakif/birthday-board/internal/model"
	"github.com/sakif/birthday-board/internal/repository"
)

// IdentityProvider is the slice of the OAuth client the login flow needs.
// *auth.GoogleProvider implements it; tests substitute a fake.
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchIdentity(ctx context.Context, token *oauth2.Token) (*auth.GoogleUser, error)
}

// AuthService orchestrates the OAuth callback: code exchange, identity fetch,
// user upsert, session issuance.
type AuthService struct {
	provider IdentityProvider
	users    repository.UserRepository
	sessions *auth.SessionService
	logger   *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	provider IdentityProvider,
	users repository.UserRepository,
	sessions *auth.SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		provider: provider,
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// AuthResult bundles the upserted user and the signed session token so the
// handler can set the cookie and redirect in one step.
type AuthResult struct {
	User         *model.User
	SessionToken string
}

// CompleteLogin runs the callback side of the OAuth flow:
//
//  1. Exchange the single-use authorization code for an access/refresh pair.
//  2. Fetch the user's identity from the userinfo endpoint.
//  3. Upsert the user keyed on their Google ID, storing the fresh tokens.
//  4. Sign a session token carrying {userId, googleId, accessToken}.
//
// ORDERING MATTERS: the session is only issued after the upsert succeeds, so
// a session cookie can never reference a user record that was never written.
// None of the steps retry — the authorization code is spent on first use.
func (s *AuthService) CompleteLogin(ctx context.Context, code string) (*AuthResult, error) {
	if code == "" {
		return nil, apperror.ValidationFailed("code", "no authorization code provided")
	}

	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service/auth: exchanging code: %w", err)
	}

	identity, err := s.provider.FetchIdentity(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching identity: %w", err)
	}

	// The repository fills in ID, CreatedAt and UpdatedAt; on repeat logins
	// it keeps the existing internal ID and refreshes profile and tokens.
	user := &model.User{
		GoogleID:     identity.ID,
		Email:        identity.Email,
		Name:         identity.Name,
		AvatarURL:    identity.Picture,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (googleID=%s): %w", identity.ID, err)
	}

	s.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("googleID", user.GoogleID),
	)

	sessionToken, err := s.sessions.Generate(auth.Session{
		UserID:      user.ID,
		GoogleID:    user.GoogleID,
		AccessToken: token.AccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating session for user %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:         user,
		SessionToken: sessionToken,
	}, nil
}
