package db

import (
	"database/sql"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/agora-sh/agora/internal/core"
	"github.com/agora-sh/agora/internal/types"
)

// DefaultPath returns the identity database path under the agora config
// directory.
func DefaultPath() (string, error) {
	dir, err := core.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "agora.db"), nil
}

// Open opens the identity database, creating it if needed.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := initSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func initSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS agora_identity (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			name TEXT NOT NULL,
			password TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	return err
}

// SaveIdentity stores the display-name/password pair, replacing any
// prior identity. Identity persists between sessions; everything else
// the client holds is session-only.
func SaveIdentity(conn *sql.DB, id types.Identity, now int64) error {
	_, err := conn.Exec(`
		INSERT OR REPLACE INTO agora_identity (id, name, password, updated_at)
		VALUES (1, ?, ?, ?)
	`, id.Name, id.Password, now)
	return err
}

// LoadIdentity returns the stored identity, or nil if none has been
// saved yet.
func LoadIdentity(conn *sql.DB) (*types.Identity, error) {
	row := conn.QueryRow(`SELECT name, password FROM agora_identity WHERE id = 1`)
	var id types.Identity
	err := row.Scan(&id.Name, &id.Password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ClearIdentity removes the stored identity.
func ClearIdentity(conn *sql.DB) error {
	_, err := conn.Exec(`DELETE FROM agora_identity WHERE id = 1`)
	return err
}
