// Package models defines the data structures shared between the collection
// engine, the manifest writer, and the evidence catalog.
package models

import "time"

// Outcome describes what happened to a single queue item during collection.
type Outcome string

const (
	// OutcomeCopied means the item was copied and, when verification is
	// enabled, the destination hash matched the source hash.
	OutcomeCopied Outcome = "copied"

	// OutcomeSkipped means the item was deliberately not copied (for
	// example, it vanished between enumeration and collection, or it is
	// not a regular file).
	OutcomeSkipped Outcome = "skipped"

	// OutcomeFailed means hashing, copying, or verification failed.
	// The run continues past failed items.
	OutcomeFailed Outcome = "failed"
)

// ManifestEntry is one record per processed queue item. Entries are immutable
// once recorded; directory entries record presence only and carry no hash.
type ManifestEntry struct {
	SourcePath      string  `json:"source_path"`
	DestinationPath string  `json:"destination_path,omitempty"`
	SizeBytes       int64   `json:"size_bytes"`
	SourceSHA256    string  `json:"source_sha256,omitempty"`
	DestSHA256      string  `json:"dest_sha256,omitempty"`
	Outcome         Outcome `json:"outcome"`
	Reason          string  `json:"reason,omitempty"`
	IsDirectory     bool    `json:"is_directory,omitempty"`
	Timestamp       string  `json:"timestamp"` // RFC 3339
}

// RunStats holds the counters accumulated during the copy phase. They are
// updated incrementally so an interrupted run still has correct statistics
// for everything processed before the interruption.
type RunStats struct {
	FilesCopied  int    `json:"files_copied"`
	BytesCopied  uint64 `json:"bytes_copied"`
	Failures     int    `json:"failures"`
	Skips        int    `json:"skips"`
	SkippedBytes uint64 `json:"skipped_bytes"`
}

// ModeFlags records the operator-selected run modes for the session.
type ModeFlags struct {
	Quick             bool `json:"quick"`
	DryRun            bool `json:"dry_run"`
	Unattended        bool `json:"unattended"`
	PreserveHierarchy bool `json:"preserve_hierarchy"`
	IncludeDPAPI      bool `json:"include_dpapi"`
	Verify            bool `json:"verify"`
}

// SessionInfo describes one execution of the tool.
type SessionInfo struct {
	ID              string    `json:"id"`
	Hostname        string    `json:"hostname"`
	Username        string    `json:"username"`
	DestinationRoot string    `json:"destination_root"`
	Drives          []string  `json:"drives"`
	StartedAt       time.Time `json:"started_at"`
	Flags           ModeFlags `json:"flags"`
}

// Manifest is the complete collection record persisted at the end of a run.
type Manifest struct {
	Session SessionInfo     `json:"session"`
	Custody CustodyRecord   `json:"custody"`
	Stats   RunStats        `json:"stats"`
	Entries []ManifestEntry `json:"entries"`

	// LogTail holds the last session log lines so the manifest is
	// self-describing even if the log file is separated from it.
	LogTail []string `json:"log_tail,omitempty"`
}

// Progress is a point-in-time snapshot of the copy phase, delivered to the
// progress observer at most once per whole percentage point.
type Progress struct {
	Processed int
	Total     int
	Percent   int
	Elapsed   time.Duration
	Remaining time.Duration
}
