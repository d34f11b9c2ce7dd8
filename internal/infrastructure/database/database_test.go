package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// openTestDB opens a database under a fresh temp directory and closes
// it when the test ends.
func openTestDB(t *testing.T, cfg Config) *DB {
	t.Helper()

	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "lumen.db")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "lumen.db")

	db := openTestDB(t, Config{Path: path, WALMode: true})

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestOpenAppliesWALMode(t *testing.T) {
	db := openTestDB(t, Config{WALMode: true})

	var mode string
	if err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("querying journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenWithoutWALMode(t *testing.T) {
	db := openTestDB(t, Config{WALMode: false})

	var mode string
	if err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("querying journal_mode: %v", err)
	}
	if mode == "wal" {
		t.Error("journal_mode = wal, want rollback journal when WAL is disabled")
	}
}

func TestOpenAppliesBusyTimeout(t *testing.T) {
	db := openTestDB(t, Config{WALMode: true, BusyTimeout: 7})

	var ms int
	if err := db.QueryRowContext(context.Background(), "PRAGMA busy_timeout").Scan(&ms); err != nil {
		t.Fatalf("querying busy_timeout: %v", err)
	}
	if ms != 7000 {
		t.Errorf("busy_timeout = %dms, want 7000ms", ms)
	}
}

// The stores own their schemas, so the connection layer must support
// plain DDL + DML round trips.
func TestSchemaOwnedByCaller(t *testing.T) {
	db := openTestDB(t, Config{WALMode: true})
	ctx := context.Background()

	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS vendor_session (vendor TEXT PRIMARY KEY, token TEXT)`); err != nil {
		t.Fatalf("creating table: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO vendor_session (vendor, token) VALUES (?, ?)`, "tuya", "tok-1"); err != nil {
		t.Fatalf("inserting row: %v", err)
	}

	var token string
	if err := db.QueryRowContext(ctx,
		`SELECT token FROM vendor_session WHERE vendor = ?`, "tuya").Scan(&token); err != nil {
		t.Fatalf("reading row: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("token = %q, want tok-1", token)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t, Config{WALMode: true})

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	db := openTestDB(t, Config{WALMode: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := db.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() should fail with cancelled context")
	}
}

func TestHealthCheckAfterClose(t *testing.T) {
	db := openTestDB(t, Config{WALMode: true})

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should fail on a closed database")
	}
}
