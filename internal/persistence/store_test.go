package persistence_test

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/basket/taskforge/internal/persistence"
)

func openTestStore(t *testing.T) *persistence.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "taskforge.db")
	store, err := persistence.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStore_OpenConfiguresWALAndSchema(t *testing.T) {
	store := openTestStore(t)
	db := store.DB()

	var journal string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journal); err != nil {
		t.Fatalf("pragma journal_mode: %v", err)
	}
	if journal != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", journal)
	}

	var foreignKeys int
	if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&foreignKeys); err != nil {
		t.Fatalf("pragma foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", foreignKeys)
	}

	for _, table := range []string{"schema_migrations", "tasks"} {
		var got string
		if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&got); err != nil {
			t.Fatalf("table %s not found: %v", table, err)
		}
	}
}

func TestStore_MigrationLedgerHasChecksum(t *testing.T) {
	store := openTestStore(t)

	var version int
	var checksum string
	if err := store.DB().QueryRow(`SELECT version, checksum FROM schema_migrations ORDER BY version DESC LIMIT 1;`).Scan(&version, &checksum); err != nil {
		t.Fatalf("query schema_migrations: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}
	if checksum == "" {
		t.Fatalf("expected non-empty checksum")
	}
}

func TestStore_OpenRejectsFutureSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "taskforge.db")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE schema_migrations (
			version INTEGER PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		t.Fatalf("create schema_migrations: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO schema_migrations(version, checksum) VALUES(999, 'future');`); err != nil {
		t.Fatalf("insert future version: %v", err)
	}
	_ = db.Close()

	if _, err := persistence.Open(dbPath); err == nil {
		t.Fatalf("expected error for future schema version")
	} else if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("expected newer-version error, got %v", err)
	}
}

func TestStore_OpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "taskforge.db")
	store, err := persistence.Open(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = persistence.Open(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = store.Close()
}
