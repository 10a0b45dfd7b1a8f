package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/birthday-board/internal/auth"
	"github.com/sakif/birthday-board/internal/service"
)

// stateCookieName holds the CSRF state between login and callback.
const stateCookieName = "oauth_state"

// AuthHandler manages the Google OAuth login flow and session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin    → redirect the browser to Google's authorization page
//   - HandleCallback → verify state, run the login pipeline, set the cookie
//   - HandleLogout   → clear the session cookie
type AuthHandler struct {
	google *auth.GoogleProvider
	svc    *service.AuthService
	secure bool // Secure cookie attribute — true in production (HTTPS)
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(google *auth.GoogleProvider, svc *service.AuthService, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google: google,
		svc:    svc,
		secure: secure,
		logger: logger,
	}
}

// HandleLogin redirects the user to Google's authorization page.
//
// HTTP: GET /auth/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes both into the authorization URL and into a
// short-lived HttpOnly cookie. The callback only proceeds when the two
// match, which proves the flow started on this server.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — long enough to approve, short enough to limit risk
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusFound)
}

// HandleCallback completes the OAuth login flow.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Verify the state parameter against the state cookie (CSRF check)
//  2. Run the login pipeline: exchange code → fetch identity → upsert user
//  3. Set the signed session cookie (7 days)
//  4. Redirect to the dashboard
//
// The session cookie is only set after the upsert succeeds — a session must
// never reference a user record that failed to persist.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_state",
			Message: "invalid OAuth state",
		})
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_state",
			Message: "invalid OAuth state",
		})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// Google reports a denied consent screen via the error parameter.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "missing_code",
			Message: "no authorization code provided",
		})
		return
	}

	result, err := h.svc.CompleteLogin(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// HandleLogout clears the session cookie and sends the browser home.
//
// HTTP: GET /auth/logout
//
// The session is stateless, so logout is purely client-side: MaxAge -1 tells
// the browser to delete the cookie immediately. The response is identical
// whether or not the request carried a valid session.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}
