// Package auth provides the Google OAuth client, the signed session cookie,
// and the middleware that guards protected routes.
//
// SESSION DESIGN:
// The session lives entirely client-side in one HttpOnly cookie — nothing is
// stored server-side, so "logout" is simply deleting the cookie. The cookie
// value is a signed JWT rather than plain JSON: the signature means nobody can
// mint or alter a session without the server's secret. The logical fields are
// the same ones the app has always carried — the internal user id, the Google
// id, and the current access token.
//
// LIFECYCLE:
//
//	Anonymous → (GET /auth/login, redirect to Google) → PendingCallback
//	          → (callback: exchange + upsert succeed, cookie set) → Authenticated
//	          → (GET /auth/logout, or 7-day expiry) → Anonymous
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL bounds a session: the JWT expiry and the cookie MaxAge both use
// it, so the two cannot drift apart.
const SessionTTL = 7 * 24 * time.Hour

// SessionCookieName is the cookie the browser sends on every request.
const SessionCookieName = "session"

const issuer = "birthday-board"

// Session is the decoded content of the session cookie.
type Session struct {
	UserID      string // internal user id (store-assigned)
	GoogleID    string // external identity id
	AccessToken string // current Google access token
}

// SessionService signs and verifies session tokens.
//
// It holds the HMAC secret used for both operations — the same secret must
// sign and verify, so rotating it invalidates every outstanding session.
type SessionService struct {
	secret []byte
}

// NewSessionService creates a SessionService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewSessionService(secret string) (*SessionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &SessionService{secret: []byte(secret)}, nil
}

// sessionClaims is the JWT payload. The standard "sub" claim holds the
// internal user id; the Google id and access token ride along as private
// claims with short names to keep the cookie small.
type sessionClaims struct {
	GoogleID    string `json:"gid"`
	AccessToken string `json:"at"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token valid for SessionTTL.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, fine for a
// single-server deployment.
func (s *SessionService) Generate(sess Session) (string, error) {
	now := time.Now()

	c := sessionClaims{
		GoogleID:    sess.GoogleID,
		AccessToken: sess.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a session token string.
//
// Checks performed by the jwt library: signature intact, not expired, issuer
// matches, algorithm is HS256 (jwt.WithValidMethods blocks algorithm
// confusion attacks where a token claims alg=none).
func (s *SessionService) Validate(tokenStr string) (Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, fmt.Errorf("auth: session expired")
		}
		return Session{}, fmt.Errorf("auth: invalid session token: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("auth: invalid session claims")
	}
	if c.Subject == "" {
		return Session{}, fmt.Errorf("auth: session token has no subject")
	}

	return Session{
		UserID:      c.Subject,
		GoogleID:    c.GoogleID,
		AccessToken: c.AccessToken,
	}, nil
}
