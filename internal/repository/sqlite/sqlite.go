// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — a single file inside the deployment, no
// separate server to run. For a single-server app like this the logical
// shape (a users table, a contacts table, upserts keyed on external ids) is
// the same one a hosted Postgres would hold; the repository interfaces are
// narrow enough that swapping backends means reimplementing two small types.
//
// WHY modernc.org/sqlite?
// It's a pure Go translation of SQLite — no CGo, no C compiler, painless
// cross-compilation. The driver registers itself with database/sql under the
// name "sqlite" via the blank import below.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
// The server owns the lifecycle: New opens it, Close flushes the WAL and
// releases the file lock on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the database, applies pragmas, and runs migrations.
//
// dbPath examples:
//   - "data/birthdays.db" — file-based, persistent
//   - ":memory:"          — in-memory, lost on close (used by tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces a real connection now, so a bad path or permissions issue
	// surfaces at startup instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// multiple dashboard requests can read during a sync's bulk upsert.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; contacts reference users.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	// google_id is UNIQUE — it is the upsert key; each Google account maps
	// to exactly one row.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			google_id     TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL DEFAULT '',
			name          TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			access_token  TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// The (user_id, resource_name) uniqueness is what makes re-syncing
	// idempotent: the bulk upsert targets this constraint.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS contacts (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id),
			resource_name TEXT NOT NULL,
			name          TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL DEFAULT '',
			birthday      TEXT NOT NULL,
			photo_url     TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, resource_name)
		);
		CREATE INDEX IF NOT EXISTS idx_contacts_user_id ON contacts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating contacts table: %w", err)
	}

	return nil
}
