package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilexum-group/cobra/internal/config"
	"github.com/ilexum-group/cobra/internal/session"
	"github.com/ilexum-group/cobra/internal/utils"
)

func newTestSession(t *testing.T, cfg *config.Config) *session.Session {
	t.Helper()
	require.NoError(t, utils.InitDefaultLogger())

	// Point the known-location sweep at an empty profile root so only the
	// test drive contributes queue entries.
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	s, err := session.New(t.TempDir(), cfg.Drives, cfg.Flags())
	require.NoError(t, err)
	require.NoError(t, utils.DefaultLogger.AttachFile(s.LogPath))
	t.Cleanup(func() { _ = utils.DefaultLogger.Close() })
	return s
}

func TestExecuteDryRunWritesNothing(t *testing.T) {
	drive := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(drive, "wallet.dat"), []byte("w"), 0o600))

	cfg := &config.Config{
		Drives:     []string{drive},
		DryRun:     true,
		Unattended: true,
	}
	s := newTestSession(t, cfg)

	code := execute(context.Background(), cfg, s, 1<<40, bufio.NewReader(strings.NewReader("")))
	assert.Equal(t, 0, code)

	// Only the session log exists: no manifest, no catalog, no artefacts.
	entries, err := os.ReadDir(s.Root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(s.LogPath), entries[0].Name())

	_, err = os.Stat(s.ArtifactRoot)
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteCollectsAndWritesManifest(t *testing.T) {
	drive := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(drive, "wallet.dat"), []byte("w"), 0o600))

	cfg := &config.Config{
		Drives:     []string{drive},
		Unattended: true,
	}
	s := newTestSession(t, cfg)

	code := execute(context.Background(), cfg, s, 1<<40, bufio.NewReader(strings.NewReader("")))
	assert.Equal(t, 0, code)

	_, err := os.Stat(s.ManifestPath)
	assert.NoError(t, err)
	_, err = os.Stat(s.CatalogPath)
	assert.NoError(t, err)
}

func TestExecuteDeclinedByOperator(t *testing.T) {
	drive := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(drive, "wallet.dat"), []byte("w"), 0o600))

	cfg := &config.Config{Drives: []string{drive}}
	s := newTestSession(t, cfg)

	code := execute(context.Background(), cfg, s, 1<<40, bufio.NewReader(strings.NewReader("n\n")))
	assert.Equal(t, 0, code)

	_, err := os.Stat(s.ManifestPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(s.ArtifactRoot)
	assert.True(t, os.IsNotExist(err))
}

func TestPromptDestinationReprompts(t *testing.T) {
	good := t.TempDir()
	input := filepath.Join(good, "no-such-dir") + "\n" + good + "\n"

	dest, free, err := promptDestination(bufio.NewReader(strings.NewReader(input)))
	require.NoError(t, err)
	assert.Equal(t, good, dest)
	assert.NotZero(t, free)
}

func TestValidateDestinationRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := validateDestination(path)
	assert.Error(t, err)
}
