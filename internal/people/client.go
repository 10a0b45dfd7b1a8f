// Package people is a thin client for the Google People API's connections
// listing — the only People endpoint this app calls.
//
// We call the REST endpoint directly with an authenticated http.Client rather
// than pulling in the full Google API SDK: one GET with four query
// parameters doesn't justify a generated client surface, and the oauth2
// token-source client already handles auth and token refresh.
package people

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sakif/birthday-board/internal/apperror"
	"github.com/sakif/birthday-board/internal/auth"
)

const (
	connectionsURL = "https://people.googleapis.com/v1/people/me/connections"

	// pageSize matches what the dashboard needs: one page of up to 1000
	// connections. Paginating beyond that is deliberately out of scope.
	pageSize = 1000

	// personFields limits the response to what the sync pipeline reads.
	personFields = "names,emailAddresses,birthdays,photos"

	callTimeout = 15 * time.Second
)

// Person is one entry from the connections list. Google returns far more
// fields; we only unmarshal the four groups named in personFields.
type Person struct {
	ResourceName   string         `json:"resourceName"`
	Names          []Name         `json:"names"`
	EmailAddresses []EmailAddress `json:"emailAddresses"`
	Birthdays      []Birthday     `json:"birthdays"`
	Photos         []Photo        `json:"photos"`
}

type Name struct {
	DisplayName string `json:"displayName"`
}

type EmailAddress struct {
	Value string `json:"value"`
}

// Birthday carries a structured date. Year is frequently absent (people
// rarely share it) — Month and Day are the parts the dashboard runs on.
type Birthday struct {
	Date *Date `json:"date"`
}

type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type Photo struct {
	URL string `json:"url"`
}

// connectionsResponse is the envelope around one page of connections.
type connectionsResponse struct {
	Connections []Person `json:"connections"`
}

// ConnectionLister is the capability the sync engine depends on. The
// interface keeps the engine testable against a fake without network access.
type ConnectionLister interface {
	ListConnections(ctx context.Context, accessToken, refreshToken string) ([]Person, error)
}

// Client calls the People API with credentials minted by the OAuth provider.
type Client struct {
	provider *auth.GoogleProvider
}

// NewClient creates a People API client on top of the given provider.
func NewClient(provider *auth.GoogleProvider) *Client {
	return &Client{provider: provider}
}

var _ ConnectionLister = (*Client)(nil)

// ListConnections fetches one page of the user's contacts.
//
// The provider's client carries a token source built from the stored
// access/refresh pair, so an expired access token is refreshed transparently
// on the way through. Beyond that there is no retry: any failure is reported
// to the caller as-is, classified into the app's error taxonomy.
func (c *Client) ListConnections(ctx context.Context, accessToken, refreshToken string) ([]Person, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("pageSize", fmt.Sprint(pageSize))
	q.Set("personFields", personFields)

	httpClient := c.provider.Client(ctx, accessToken, refreshToken)
	resp, err := httpClient.Get(connectionsURL + "?" + q.Encode())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.UpstreamTimeout("connections listing timed out", err)
		}
		return nil, apperror.UpstreamAuth("calling connections endpoint failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperror.UpstreamAuth(
			fmt.Sprintf("connections endpoint rejected credentials (status %d)", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, apperror.UpstreamAuth(
			fmt.Sprintf("connections endpoint returned status %d", resp.StatusCode), nil)
	}

	var body connectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.UpstreamAuth("decoding connections response failed", err)
	}

	// A user with zero contacts gets an empty page, not an error.
	return body.Connections, nil
}
