// Package token persists the session token pair as a single sealed row.
// It implements the session.TokenStore port.
package token

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"activitypass/internal/adapters/storage"
	domain "activitypass/internal/domain/token"
)

// SQLiteStore implements session.TokenStore using SQLite with sealed
// columns.
type SQLiteStore struct {
	db     *sql.DB
	sealer *storage.Sealer
}

// NewSQLiteStore creates a new token store.
func NewSQLiteStore(db *sql.DB, sealer *storage.Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer}
}

// Load retrieves the persisted pair, if any.
// POST: A corrupt or foreign-keyed row reads as no pair and is dropped, so
// the next launch starts clean instead of failing forever
func (s *SQLiteStore) Load(ctx context.Context) (*domain.Pair, error) {
	var accessSealed, refreshSealed string
	err := s.db.QueryRowContext(ctx,
		"SELECT access_sealed, refresh_sealed FROM token_record WHERE id = 1",
	).Scan(&accessSealed, &refreshSealed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	access, err := s.sealer.Open(accessSealed)
	if err == nil {
		var refresh string
		refresh, err = s.sealer.Open(refreshSealed)
		if err == nil {
			return &domain.Pair{Access: access, Refresh: refresh}, nil
		}
	}
	if errors.Is(err, storage.ErrSealCorrupt) {
		slog.Warn("storage_event", "event", "token_record_corrupt")
		_ = s.Clear(ctx)
		return nil, nil
	}
	return nil, err
}

// Save persists the pair, replacing any previous row.
// PRE: pair has both tokens set
func (s *SQLiteStore) Save(ctx context.Context, pair domain.Pair) error {
	accessSealed, err := s.sealer.Seal(pair.Access)
	if err != nil {
		return err
	}
	refreshSealed, err := s.sealer.Seal(pair.Refresh)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO token_record (id, access_sealed, refresh_sealed, updated_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET access_sealed=excluded.access_sealed, refresh_sealed=excluded.refresh_sealed, updated_at=excluded.updated_at`,
		accessSealed, refreshSealed, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Clear removes the persisted pair.
// POST: Load returns no pair
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM token_record WHERE id = 1")
	return err
}
