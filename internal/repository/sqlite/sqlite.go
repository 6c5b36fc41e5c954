// Package sqlite implements the repository interfaces on SQLite via the pure
// Go modernc.org/sqlite driver (no CGo, works everywhere Go works).
//
// The schema carries the invariants the services depend on:
//   - cards.scryfall_id is UNIQUE — the serialization point for the card
//     resolver's concurrent first-reference race
//   - deck_cards is UNIQUE on (deck_id, card_id, zone) so an add can be a
//     single atomic ON CONFLICT upsert rather than read-modify-write
//   - deck_cards rows cascade away with their deck; decks fall back to no
//     folder when their folder is deleted
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath (":memory:" for tests) and runs
// migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must stay at
	// one connection or queries would see an empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in flight — important for a
	// web server sharing one database file across requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. The deck_cards cascade and
	// the decks folder_id SET NULL both depend on them being on.
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

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS cards (
			id          TEXT PRIMARY KEY,
			scryfall_id TEXT NOT NULL UNIQUE,
			name        TEXT NOT NULL,
			mana_cost   TEXT NOT NULL DEFAULT '',
			type_line   TEXT NOT NULL DEFAULT '',
			oracle_text TEXT NOT NULL DEFAULT '',
			image_url   TEXT NOT NULL DEFAULT '',
			colors      TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name);

		CREATE TABLE IF NOT EXISTS folders (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			user_id    TEXT NOT NULL REFERENCES users(id),
			parent_id  TEXT REFERENCES folders(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_folders_user_id ON folders(user_id);
		CREATE INDEX IF NOT EXISTS idx_folders_parent_id ON folders(parent_id);

		CREATE TABLE IF NOT EXISTS decks (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			user_id     TEXT NOT NULL REFERENCES users(id),
			folder_id   TEXT REFERENCES folders(id) ON DELETE SET NULL,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_decks_user_id ON decks(user_id);
		CREATE INDEX IF NOT EXISTS idx_decks_folder_id ON decks(folder_id);

		CREATE TABLE IF NOT EXISTS deck_cards (
			id       TEXT PRIMARY KEY,
			deck_id  TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
			card_id  TEXT NOT NULL REFERENCES cards(id),
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			zone     TEXT NOT NULL CHECK (zone IN ('main', 'sideboard')),
			UNIQUE (deck_id, card_id, zone)
		);
		CREATE INDEX IF NOT EXISTS idx_deck_cards_deck_id ON deck_cards(deck_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE (or primary key)
// constraint failure. The repositories translate these into
// apperror.ErrConflict so callers never see driver error codes.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT,
		sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// isForeignKeyViolation reports whether err is a SQLite foreign-key
// constraint failure — a write referencing a row that doesn't exist.
func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}
