package sqlite

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/birthday-board/internal/apperror"
	"github.com/sakif/birthday-board/internal/model"
	"github.com/sakif/birthday-board/internal/repository"
)

// compile-time check that *DB implements repository.ContactRepository
var _ repository.ContactRepository = (*DB)(nil)

// UpsertBatch writes one sync's worth of contacts for a user in a single
// transaction.
//
// ATOMICITY:
// The sync engine depends on the whole batch landing or none of it — a
// half-written sync would leave the dashboard in a state no upstream snapshot
// ever had. Wrapping the loop in one transaction gives that guarantee; the
// deferred Rollback is a no-op after a successful Commit.
//
// IDEMPOTENCY:
// ON CONFLICT(user_id, resource_name) DO UPDATE makes re-syncing overwrite
// in place. A conflicting row keeps its internal id and created_at; name,
// email, birthday and photo are refreshed from upstream.
func (db *DB) UpsertBatch(ctx context.Context, userID string, contacts []model.Contact) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Persistence("starting contact upsert transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contacts (id, user_id, resource_name, name, email, birthday, photo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, resource_name) DO UPDATE SET
			name       = excluded.name,
			email      = excluded.email,
			birthday   = excluded.birthday,
			photo_url  = excluded.photo_url,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return apperror.Persistence("preparing contact upsert", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range contacts {
		_, err := stmt.ExecContext(ctx,
			xid.New().String(),
			userID,
			c.ResourceName,
			c.Name,
			c.Email,
			c.Birthday,
			c.PhotoURL,
			now,
			now,
		)
		if err != nil {
			return apperror.Persistence("upserting contact "+c.ResourceName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Persistence("committing contact upsert", err)
	}

	return nil
}

// ListByUser returns all stored contacts for a user. Ordering by the upcoming
// birthday is the query adapter's job — it needs today's date, which doesn't
// belong in SQL — so rows come back in a stable name order here.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Contact, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, resource_name, name, email, birthday, photo_url, created_at, updated_at
		 FROM contacts WHERE user_id = ?
		 ORDER BY name, resource_name`,
		userID,
	)
	if err != nil {
		return nil, apperror.Persistence("listing contacts for user "+userID, err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.ResourceName,
			&c.Name,
			&c.Email,
			&c.Birthday,
			&c.PhotoURL,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, apperror.Persistence("scanning contact row", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Persistence("iterating contact rows", err)
	}

	return contacts, nil
}
