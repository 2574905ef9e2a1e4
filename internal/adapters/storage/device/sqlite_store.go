package device

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new device Store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetOrCreateInstallID returns the install id, minting one on first launch.
// POST: The same id is returned for the lifetime of the database file
func (s *SQLiteStore) GetOrCreateInstallID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, "SELECT install_id FROM device WHERE id = 1").Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	id = uuid.NewString()
	// A concurrent first launch may have won the insert; re-read on conflict.
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO device (id, install_id, created_at) VALUES (1, ?, ?) ON CONFLICT(id) DO NOTHING",
		id, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT install_id FROM device WHERE id = 1").Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
