package store

import (
	"database/sql"
	"fmt"
)

// migrations[i] moves the schema from user_version i to i+1.
var migrations = []func(tx *sql.Tx) error{
	// 1: per-client key/value rows for the search page snapshot
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS searches (
  client_id  TEXT NOT NULL,
  key        TEXT NOT NULL,
  value      TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (client_id, key)
);
CREATE INDEX IF NOT EXISTS idx_searches_updated_at ON searches(updated_at);`)
		return err
	},
	// 2: logo blobs keyed by canonical url hash
	func(tx *sql.Tx) error {
		_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS logos (
  key          TEXT PRIMARY KEY,
  url          TEXT NOT NULL DEFAULT '',
  content_type TEXT NOT NULL,
  bytes        BLOB NOT NULL,
  fetched_at   TEXT NOT NULL
);`)
		return err
	},
}

var schemaVersion = len(migrations)

// Migrate applies every pending migration in one transaction.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= schemaVersion {
		return nil
	}

	for i := v; i < schemaVersion; i++ {
		if err := migrations[i](tx); err != nil {
			return fmt.Errorf("schema v%d: %w", i+1, err)
		}
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}
