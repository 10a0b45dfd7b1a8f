// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a signed-in account.
//
// Google OAuth is the identity provider, so the stable external identifier is
// Google's user ID (a string of digits). We still generate our own internal
// xid so primary keys aren't tied to a third party's numbering scheme. The
// UNIQUE constraint on google_id in the DB ensures one Google account maps to
// exactly one app account — it is the upsert key.
//
// AccessToken and RefreshToken are the credentials for calling the People API
// on the user's behalf. They are overwritten on every login (token rotation),
// with one exception: Google omits the refresh token on repeat logins, and an
// empty value must not clobber the stored one. Tokens never appear in JSON
// responses — note the `json:"-"` tags.
type User struct {
	ID           string    `json:"id"        db:"id"`
	GoogleID     string    `json:"googleId"  db:"google_id"`
	Email        string    `json:"email"     db:"email"`      // may be empty if hidden
	Name         string    `json:"name"      db:"name"`       // display name from the profile
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"` // profile picture URL
	AccessToken  string    `json:"-"         db:"access_token"`
	RefreshToken string    `json:"-"         db:"refresh_token"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
