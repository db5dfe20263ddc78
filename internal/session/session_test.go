package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilexum-group/cobra/pkg/models"
)

func TestNewCreatesSessionFolder(t *testing.T) {
	dest := t.TempDir()
	s, err := New(dest, []string{"/"}, models.ModeFlags{Quick: true, Verify: true})
	require.NoError(t, err)

	info, err := os.Stat(s.Root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, filepath.Join(dest, EvidenceDirName, "Session_"+s.ID), s.Root)
	assert.Equal(t, filepath.Join(s.Root, "artifacts"), s.ArtifactRoot)
	assert.Equal(t, filepath.Join(s.Root, "manifest.json"), s.ManifestPath)
	assert.Equal(t, filepath.Join(s.Root, "catalog.db"), s.CatalogPath)

	// The artefact folder is created lazily, not here.
	_, err = os.Stat(s.ArtifactRoot)
	assert.True(t, os.IsNotExist(err))
}

func TestNewAbortsOnCollision(t *testing.T) {
	dest := t.TempDir()
	at := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)

	_, err := newAt(dest, nil, models.ModeFlags{}, at)
	require.NoError(t, err)

	_, err = newAt(dest, nil, models.ModeFlags{}, at)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionExists))
}

func TestInfoPopulatesIdentity(t *testing.T) {
	s, err := New(t.TempDir(), []string{"C:\\"}, models.ModeFlags{DryRun: true})
	require.NoError(t, err)

	info := s.Info()
	assert.Equal(t, s.ID, info.ID)
	assert.NotEmpty(t, info.Hostname)
	assert.Equal(t, []string{"C:\\"}, info.Drives)
	assert.True(t, info.Flags.DryRun)
}
