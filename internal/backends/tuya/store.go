package tuya

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store caches the cloud access token and the discovered device list in
// SQLite so restarts do not re-authenticate or re-scan.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open SQLite connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the cache tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tuya_session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			access_token TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
		CREATE TABLE IF NOT EXISTS tuya_devices (
			device_id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tuya cache schema: %w", err)
	}
	return nil
}

// AccessToken returns the cached token, or "" when none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT access_token FROM tuya_session WHERE id = 1").Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying tuya session: %w", err)
	}
	return token, nil
}

// SaveAccessToken replaces the cached token.
func (s *Store) SaveAccessToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tuya_session (id, access_token, updated_at)
		VALUES (1, ?, datetime('now'))
		ON CONFLICT (id) DO UPDATE SET
			access_token = excluded.access_token,
			updated_at = excluded.updated_at
	`, token)
	if err != nil {
		return fmt.Errorf("saving tuya session: %w", err)
	}
	return nil
}

// Devices returns the cached device list. An empty slice means no scan
// has been cached yet.
func (s *Store) Devices(ctx context.Context) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT device_id, name FROM tuya_devices ORDER BY device_id")
	if err != nil {
		return nil, fmt.Errorf("querying tuya devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scanning tuya device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tuya devices: %w", err)
	}
	return devices, nil
}

// SaveDevices replaces the cached device list.
func (s *Store) SaveDevices(ctx context.Context, devices []Device) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting tuya device save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tuya_devices"); err != nil {
		return fmt.Errorf("clearing tuya devices: %w", err)
	}
	for _, d := range devices {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tuya_devices (device_id, name) VALUES (?, ?)",
			d.ID, d.Name); err != nil {
			return fmt.Errorf("inserting tuya device %s: %w", d.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing tuya devices: %w", err)
	}
	return nil
}
