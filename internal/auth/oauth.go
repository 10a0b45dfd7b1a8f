package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sakif/birthday-board/internal/apperror"
)

// callTimeout bounds every outbound call to Google. Each call gets an explicit
// deadline and reports apperror.ErrUpstreamTimeout when it expires.
const callTimeout = 10 * time.Second

// userinfoURL is Google's OpenID userinfo endpoint (v2 — returns "id" rather
// than "sub", matching the field the user upsert keys on).
const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUser is the portion of the userinfo response we care about.
// Google returns a larger object — we only unmarshal the fields we need.
type GoogleUser struct {
	ID      string `json:"id"`      // Google's user ID — stable, never changes
	Email   string `json:"email"`   // primary email (may be empty if hidden)
	Name    string `json:"name"`    // display name, e.g. "Ann Example"
	Picture string `json:"picture"` // profile picture URL
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization Code flow.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. The server redirects the user to Google's authorization endpoint with
//     the ClientID and requested scopes.
//  2. The user approves the request on Google.
//  3. Google redirects back to the RedirectURL with a short-lived "code".
//  4. The server exchanges the code for tokens (server-to-server call using
//     the ClientSecret — the tokens never touch the browser).
//  5. The server uses the access token to call the userinfo and People APIs.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider with the given credentials.
//
// Scopes we request:
//   - userinfo.email / userinfo.profile — who the user is
//   - contacts.readonly — read the user's Google Contacts for the sync
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/contacts.readonly",
			},
			Endpoint: google.Endpoint, // pre-defined Google OAuth endpoints
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// The state is a random string stored in a cookie before redirecting; the
// callback handler verifies it matches, which blocks CSRF-initiated flows.
//
// AccessTypeOffline asks Google for a refresh token alongside the access
// token — without it the People API calls stop working after an hour.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the single-use authorization code for an access/refresh
// token pair. A provider failure surfaces as apperror.ErrUpstreamAuth and is
// never retried — the code is already spent.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.UpstreamTimeout("token exchange timed out", err)
		}
		return nil, apperror.UpstreamAuth("exchanging authorization code failed", err)
	}
	if token.AccessToken == "" {
		return nil, apperror.UpstreamAuth("token endpoint returned no access token", nil)
	}

	return token, nil
}

// FetchIdentity calls Google's userinfo endpoint with the freshly exchanged
// token and returns the user's stable identity.
func (p *GoogleProvider) FetchIdentity(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	// oauth2.Config.Client returns an *http.Client that adds the
	// "Authorization: Bearer <token>" header to every request.
	resp, err := p.config.Client(ctx, token).Get(userinfoURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.UpstreamTimeout("userinfo call timed out", err)
		}
		return nil, apperror.UpstreamAuth("calling userinfo endpoint failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.UpstreamAuth(
			fmt.Sprintf("userinfo endpoint returned status %d", resp.StatusCode), nil)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, apperror.UpstreamAuth("decoding userinfo response failed", err)
	}
	if gu.ID == "" {
		return nil, apperror.UpstreamAuth("userinfo response carried no user id", nil)
	}

	return &gu, nil
}

// Client returns an HTTP client that authenticates every request with the
// given token pair. The underlying oauth2.TokenSource transparently refreshes
// an expired access token using the refresh token, so downstream API clients
// (the People client) don't deal with token expiry themselves.
func (p *GoogleProvider) Client(ctx context.Context, accessToken, refreshToken string) *http.Client {
	return p.config.Client(ctx, &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
