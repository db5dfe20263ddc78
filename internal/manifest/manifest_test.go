package manifest

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilexum-group/cobra/pkg/models"
)

func sampleManifest() *models.Manifest {
	custody := models.NewCustodyRecord("1.0.0", "forensic-host", "examiner")
	custody.Finalize(2, 1024)
	return &models.Manifest{
		Session: models.SessionInfo{
			ID:        "20260830_103000",
			Hostname:  "forensic-host",
			Username:  "examiner",
			Drives:    []string{"C:\\"},
			StartedAt: time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC),
			Flags:     models.ModeFlags{Verify: true},
		},
		Custody: custody,
		Stats:   models.RunStats{FilesCopied: 1, BytesCopied: 1024, Failures: 1},
		Entries: []models.ManifestEntry{
			{
				SourcePath:      "/home/alice/wallet.dat",
				DestinationPath: "/mnt/evidence/wallet.dat",
				SizeBytes:       1024,
				SourceSHA256:    "abc123",
				DestSHA256:      "abc123",
				Outcome:         models.OutcomeCopied,
				Timestamp:       "2026-08-30T10:30:01Z",
			},
			{
				SourcePath: "/home/alice/locked.key",
				Outcome:    models.OutcomeFailed,
				Reason:     "failed to hash source: permission denied",
				Timestamp:  "2026-08-30T10:30:02Z",
			},
		},
		LogTail: []string{"<14>1 2026-08-30T10:30:00Z forensic-host Cobra 1 - - Collection finished"},
	}
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, Write(path, sampleManifest()))

	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, "20260830_103000", got.Session.ID)
	assert.Equal(t, 1, got.Stats.FilesCopied)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, models.OutcomeCopied, got.Entries[0].Outcome)
	assert.Equal(t, models.OutcomeFailed, got.Entries[1].Outcome)
	assert.NotEmpty(t, got.Custody.ID)
	assert.Len(t, got.LogTail, 1)
}

func TestWriteLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, Write(path, sampleManifest()))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "manifest.json", files[0].Name())
}

func TestWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	require.NoError(t, Write(path, sampleManifest()))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "20260830_103000", got.Session.ID)
}

func TestWriteCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	m := sampleManifest()
	require.NoError(t, WriteCatalog(path, m))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count))
	assert.Equal(t, len(m.Entries), count)

	var outcome, reason string
	require.NoError(t, db.QueryRow(
		"SELECT outcome, reason FROM entries WHERE source_path = ?",
		"/home/alice/locked.key").Scan(&outcome, &reason))
	assert.Equal(t, "failed", outcome)
	assert.Contains(t, reason, "permission denied")

	var sessionID string
	require.NoError(t, db.QueryRow("SELECT id FROM session").Scan(&sessionID))
	assert.Equal(t, m.Session.ID, sessionID)
}
