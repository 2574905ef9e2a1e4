// Package prefs persists partial preference records per scope as JSON rows.
// It implements the prefstore.RecordStore port.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	domain "activitypass/internal/domain/prefs"
)

const legacyLanguageKey = "language"

// SQLiteStore implements prefstore.RecordStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new preference record store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// LoadRecord retrieves the record for one scope.
// POST: Returns (nil, nil) when nothing is stored; an unparseable row also
// reads as nothing stored so resolution falls through to lower layers
func (s *SQLiteStore) LoadRecord(ctx context.Context, scope string) (*domain.Record, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM preference_record WHERE scope = ?", scope,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec domain.Record
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		slog.Warn("storage_event", "event", "preference_record_corrupt", "scope", scope)
		return nil, nil
	}
	return &rec, nil
}

// SaveRecord persists the record for one scope.
func (s *SQLiteStore) SaveRecord(ctx context.Context, scope string, rec domain.Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO preference_record (scope, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(scope) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		scope, string(value), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

// LegacyLanguage reads the pre-record language marker left by earlier
// builds.
// POST: Returns "" when no marker exists
func (s *SQLiteStore) LegacyLanguage(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM legacy_marker WHERE key = ?", legacyLanguageKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SaveLegacyLanguage keeps the marker in step for older builds sharing the
// database file.
func (s *SQLiteStore) SaveLegacyLanguage(ctx context.Context, code string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO legacy_marker (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		legacyLanguageKey, code,
	)
	return err
}
