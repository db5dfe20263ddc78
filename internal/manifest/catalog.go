package manifest

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ilexum-group/cobra/pkg/models"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS session (
	id              TEXT NOT NULL,
	hostname        TEXT NOT NULL,
	username        TEXT NOT NULL,
	started_at      TEXT NOT NULL,
	custody_id      TEXT NOT NULL,
	agent_version   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS entries (
	seq              INTEGER PRIMARY KEY AUTOINCREMENT,
	source_path      TEXT NOT NULL,
	destination_path TEXT,
	size_bytes       INTEGER NOT NULL,
	source_sha256    TEXT,
	dest_sha256      TEXT,
	outcome          TEXT NOT NULL,
	reason           TEXT,
	is_directory     INTEGER NOT NULL,
	timestamp        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_outcome ON entries(outcome);
CREATE INDEX IF NOT EXISTS idx_entries_sha256 ON entries(source_sha256);
`

// WriteCatalog mirrors the manifest into a sqlite database at path so large
// collections can be triaged with ad-hoc queries instead of scanning the JSON.
// Entries are inserted in one transaction in manifest order.
func WriteCatalog(path string, m *models.Manifest) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(catalogSchema); err != nil {
		return fmt.Errorf("failed to create catalog schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin catalog transaction: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO session (id, hostname, username, started_at, custody_id, agent_version)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.Session.ID, m.Session.Hostname, m.Session.Username,
		m.Session.StartedAt.Format(time.RFC3339),
		m.Custody.ID, m.Custody.AgentVersion,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to insert session row: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO entries (source_path, destination_path, size_bytes, source_sha256,
		                      dest_sha256, outcome, reason, is_directory, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare catalog insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, entry := range m.Entries {
		isDir := 0
		if entry.IsDirectory {
			isDir = 1
		}
		if _, err := stmt.Exec(
			entry.SourcePath, entry.DestinationPath, entry.SizeBytes,
			entry.SourceSHA256, entry.DestSHA256, string(entry.Outcome),
			entry.Reason, isDir, entry.Timestamp,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert catalog entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}
