package device

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"activitypass/internal/adapters/storage"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	return NewSQLiteStore(db)
}

// TestSQLiteStore_GetOrCreateInstallID tests minting and stability.
func TestSQLiteStore_GetOrCreateInstallID(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first, err := store.GetOrCreateInstallID(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateInstallID() error = %v", err)
	}
	if first == "" {
		t.Fatal("GetOrCreateInstallID() = empty id")
	}

	second, err := store.GetOrCreateInstallID(ctx)
	if err != nil {
		t.Fatalf("GetOrCreateInstallID() error = %v", err)
	}
	if second != first {
		t.Errorf("GetOrCreateInstallID() = %q on second call, want %q", second, first)
	}
}
