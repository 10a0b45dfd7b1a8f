package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write the
// session value in a request context — no collisions with other packages.
type contextKey string

const sessionKey contextKey = "session"

// RequireSession enforces authentication on protected routes.
//
// It reads the session cookie, validates the signature, and stores the
// decoded Session in the request context. A missing or malformed cookie is
// treated as an anonymous request — never an internal error — and answered
// with 401 before any backend work happens.
func RequireSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := extractSession(r, sessions)
			if err != nil {
				http.Error(w, `{"error":"unauthenticated","message":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession decodes the session if a valid cookie is present but never
// blocks the request. Page handlers use it so the login page can redirect an
// already-authenticated browser straight to the dashboard.
func OptionalSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, err := extractSession(r, sessions); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), sessionKey, sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext retrieves the authenticated session from the request
// context. Returns (Session{}, false) for anonymous requests.
func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionKey).(Session)
	return sess, ok && sess.UserID != ""
}

func extractSession(r *http.Request, sessions *SessionService) (Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		// http.ErrNoCookie — not an error, just anonymous
		return Session{}, err
	}
	return sessions.Validate(cookie.Value)
}
