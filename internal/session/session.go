// Package session owns one execution of the tool: the destination session
// folder, the timestamp-derived session identifier, and the paths of the
// session log, manifest, catalog, and artefact tree.
package session

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/ilexum-group/cobra/pkg/models"
)

// EvidenceDirName is the fixed folder created under the destination root.
const EvidenceDirName = "COBRA_Evidence"

// ErrSessionExists signals a session folder collision. Two sessions must
// never share a destination folder, so this aborts the run.
var ErrSessionExists = errors.New("session folder already exists")

// Session is read-only after New; every component receives it explicitly
// instead of consulting ambient globals.
type Session struct {
	ID           string
	Root         string // <dest>/COBRA_Evidence/Session_<id>
	ArtifactRoot string
	LogPath      string
	ManifestPath string
	CatalogPath  string
	StartedAt    time.Time
	Flags        models.ModeFlags
	Drives       []string
}

// New creates the session folder tree under the destination and returns the
// session context. The artefact subfolder is created lazily by the engine so
// a dry run leaves only the session folder and log behind.
func New(destination string, drives []string, flags models.ModeFlags) (*Session, error) {
	return newAt(destination, drives, flags, time.Now())
}

func newAt(destination string, drives []string, flags models.ModeFlags, startedAt time.Time) (*Session, error) {
	id := startedAt.Format("20060102_150405")
	root := filepath.Join(destination, EvidenceDirName, "Session_"+id)

	if _, err := os.Stat(root); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, root)
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session folder: %w", err)
	}

	return &Session{
		ID:           id,
		Root:         root,
		ArtifactRoot: filepath.Join(root, "artifacts"),
		LogPath:      filepath.Join(root, "session.log"),
		ManifestPath: filepath.Join(root, "manifest.json"),
		CatalogPath:  filepath.Join(root, "catalog.db"),
		StartedAt:    startedAt,
		Flags:        flags,
		Drives:       drives,
	}, nil
}

// Info builds the session metadata block embedded in the manifest.
func (s *Session) Info() models.SessionInfo {
	hostname, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return models.SessionInfo{
		ID:              s.ID,
		Hostname:        hostname,
		Username:        username,
		DestinationRoot: s.Root,
		Drives:          s.Drives,
		StartedAt:       s.StartedAt.UTC(),
		Flags:           s.Flags,
	}
}
