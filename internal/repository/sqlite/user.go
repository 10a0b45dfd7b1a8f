package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/birthday-board/internal/apperror"
	"github.com/sakif/birthday-board/internal/model"
	"github.com/sakif/birthday-board/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or updates a user keyed on their Google ID.
//
// We first look up the existing row so an update keeps the internal ID —
// the session cookie and the contacts table both reference it, so it must
// never change across logins.
//
// Tokens are always overwritten, with one exception: Google only returns a
// refresh token on the first consent, so an empty incoming refresh token
// preserves the stored one instead of clobbering it.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	var existingID, existingRefresh string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, refresh_token FROM users WHERE google_id = ?`, user.GoogleID,
	).Scan(&existingID, &existingRefresh)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return apperror.Persistence("looking up user by google id", err)
	}

	if existingID != "" {
		user.ID = existingID
		if user.RefreshToken == "" {
			user.RefreshToken = existingRefresh
		}
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users
			 SET email = ?, name = ?, avatar_url = ?, access_token = ?, refresh_token = ?, updated_at = ?
			 WHERE id = ?`,
			user.Email,
			user.Name,
			user.AvatarURL,
			user.AccessToken,
			user.RefreshToken,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return apperror.Persistence("updating user "+user.ID, err)
		}
		return nil
	}

	// New user — generate an internal ID and INSERT.
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, google_id, email, name, avatar_url, access_token, refresh_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.GoogleID,
		user.Email,
		user.Name,
		user.AvatarURL,
		user.AccessToken,
		user.RefreshToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return apperror.Persistence("inserting user", err)
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID — this is the
// guard against stale or forged session cookies referencing deleted users.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, google_id, email, name, avatar_url, access_token, refresh_token, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.GoogleID,
		&u.Email,
		&u.Name,
		&u.AvatarURL,
		&u.AccessToken,
		&u.RefreshToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Persistence("getting user "+id, err)
	}

	return &u, nil
}

// GetTokens returns just the stored token pair for a user.
func (db *DB) GetTokens(ctx context.Context, id string) (repository.TokenPair, error) {
	var tp repository.TokenPair

	err := db.conn.QueryRowContext(ctx,
		`SELECT access_token, refresh_token FROM users WHERE id = ?`, id,
	).Scan(&tp.AccessToken, &tp.RefreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.TokenPair{}, apperror.NotFound("user", id)
		}
		return repository.TokenPair{}, apperror.Persistence("getting tokens for user "+id, err)
	}

	return tp, nil
}
