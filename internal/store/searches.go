package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"franchise-engine/internal/domain"
)

// LastSearchKey is the key the search page persists its snapshot under.
const LastSearchKey = "lastSearch"

// ErrCorruptSnapshot marks a stored value that is not valid JSON. Callers
// treat it like a missing snapshot.
var ErrCorruptSnapshot = errors.New("corrupt search snapshot")

func SaveSearch(ctx context.Context, db *sql.DB, clientID string, snap domain.SearchSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return putRaw(ctx, db, clientID, LastSearchKey, string(b))
}

// LastSearch returns the stored snapshot. ok is false when nothing is stored;
// unparseable JSON returns ErrCorruptSnapshot with ok false.
func LastSearch(ctx context.Context, db *sql.DB, clientID string) (snap domain.SearchSnapshot, ok bool, err error) {
	var raw string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM searches WHERE client_id = ? AND key = ? LIMIT 1;`,
		clientID, LastSearchKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, err
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return domain.SearchSnapshot{}, false, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return snap, true, nil
}

func ClearSearch(ctx context.Context, db *sql.DB, clientID string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM searches WHERE client_id = ? AND key = ?;`,
		clientID, LastSearchKey)
	return err
}

// putRaw stores value as is; the search page writes whatever the form held.
func putRaw(ctx context.Context, db *sql.DB, clientID, key, value string) error {
	clientID = strings.TrimSpace(clientID)
	_, err := db.ExecContext(ctx, `
INSERT INTO searches(client_id, key, value, updated_at)
VALUES(?,?,?,?)
ON CONFLICT(client_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`,
		clientID, key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// CleanupOldSearches drops snapshots nobody has touched in three months.
func CleanupOldSearches(ctx context.Context, db *sql.DB) (deleted int64, err error) {
	cutoff := time.Now().UTC().AddDate(0, -3, 0).Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `DELETE FROM searches WHERE updated_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old searches: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
