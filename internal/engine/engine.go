// Package engine drains the artefact queue: it copies each item to the
// destination, computes integrity hashes, and records one manifest entry per
// item. A single failed item never aborts the run.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ilexum-group/cobra/internal/exclusion"
	"github.com/ilexum-group/cobra/internal/utils"
	"github.com/ilexum-group/cobra/pkg/models"
)

// Options configures one collection run.
type Options struct {
	// PreserveHierarchy mirrors each source's volume-relative path under
	// the destination instead of flattening into one folder.
	PreserveHierarchy bool

	// Verify re-hashes every copied file on the destination and compares
	// against the source hash.
	Verify bool

	// OnProgress, when set, receives a snapshot at most once per whole
	// percentage point of completion.
	OnProgress func(models.Progress)
}

// Engine collects queued artefacts into the session's artefact root.
type Engine struct {
	artifactRoot string
	opts         Options

	stats     models.RunStats
	entries   []models.ManifestEntry
	flatNames map[string]struct{}

	total       int
	processed   int
	startedAt   time.Time
	lastPercent int
}

// workItem is one unit of the copy phase, produced by expanding queued
// directories into their contained files.
type workItem struct {
	src   string
	dest  string
	size  int64
	isDir bool
}

// New creates an engine writing beneath artifactRoot.
func New(artifactRoot string, opts Options) *Engine {
	return &Engine{
		artifactRoot: artifactRoot,
		opts:         opts,
		flatNames:    make(map[string]struct{}),
	}
}

// Run processes the queued paths in order and returns the accumulated stats
// and manifest entries. Stats are updated incrementally, so an interrupted
// run still reports correctly for everything processed before the
// interruption.
func (e *Engine) Run(paths []string) (models.RunStats, []models.ManifestEntry) {
	items := e.expand(paths)

	e.total = 0
	for _, it := range items {
		if !it.isDir {
			e.total++
		}
	}
	e.startedAt = time.Now()
	e.lastPercent = -1

	for _, it := range items {
		if it.isDir {
			e.processDirectory(it)
			continue
		}
		e.processFile(it)
		e.processed++
		e.reportProgress()
	}

	utils.LogInfo("Collection finished", map[string]string{
		"copied":   strconv.Itoa(e.stats.FilesCopied),
		"failed":   strconv.Itoa(e.stats.Failures),
		"skipped":  strconv.Itoa(e.stats.Skips),
		"bytes":    humanize.Bytes(e.stats.BytesCopied),
		"duration": time.Since(e.startedAt).Round(time.Millisecond).String(),
	})
	return e.stats, e.entries
}

// expand resolves every queue entry into work items, recursing into queued
// directories so each contained file gets its own hash and outcome. Items
// that vanished since enumeration or are not regular files are recorded as
// skips immediately.
func (e *Engine) expand(paths []string) []workItem {
	var items []workItem
	for _, src := range paths {
		info, err := os.Stat(src)
		if err != nil {
			e.recordSkip(src, 0, "source no longer accessible: "+err.Error())
			continue
		}
		if info.Mode().IsRegular() {
			items = append(items, workItem{src: src, dest: e.destFor(src), size: info.Size()})
			continue
		}
		if !info.IsDir() {
			e.recordSkip(src, info.Size(), "not a regular file")
			continue
		}

		destDir := e.destFor(src)
		items = append(items, workItem{src: src, dest: destDir, isDir: true})
		items = append(items, e.expandDirectory(src, destDir)...)
	}
	return items
}

// expandDirectory walks a queued directory, mapping each contained regular
// file beneath the directory's destination. Walk errors exclude the affected
// subtree and are logged, never fatal.
func (e *Engine) expandDirectory(dir, destDir string) []workItem {
	var items []workItem
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			utils.LogWarn("Directory entry not accessible", map[string]string{
				"path":  path,
				"error": err.Error(),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		items = append(items, workItem{
			src:  path,
			dest: filepath.Join(destDir, rel),
			size: info.Size(),
		})
		return nil
	})
	return items
}

// destFor computes the destination path for a queued source. In hierarchy
// mode the volume identity is retained as the first path segment so scanning
// several volumes cannot collide; in flat mode name collisions get a
// deterministic suffix derived from the source path hash.
func (e *Engine) destFor(src string) string {
	if e.opts.PreserveHierarchy {
		return filepath.Join(e.artifactRoot, volumeSegment(src), volumeRelative(src))
	}
	return filepath.Join(e.artifactRoot, e.allocateFlatName(src))
}

// volumeSegment names the source volume: the drive letter on Windows, "root"
// for the unix filesystem root.
func volumeSegment(src string) string {
	vol := filepath.VolumeName(src)
	if vol == "" {
		return "root"
	}
	return strings.TrimSuffix(vol, ":")
}

func volumeRelative(src string) string {
	vol := filepath.VolumeName(src)
	rest := src[len(vol):]
	return strings.TrimLeft(rest, `/\`)
}

// allocateFlatName reserves a unique base name in the flat destination
// folder. The first claimant keeps the plain name; later collisions append
// eight hex characters of the source path hash, which is stable across
// reruns.
func (e *Engine) allocateFlatName(src string) string {
	base := filepath.Base(src)
	key := strings.ToLower(base)
	if _, taken := e.flatNames[key]; !taken {
		e.flatNames[key] = struct{}{}
		return base
	}

	sum := sha256.Sum256([]byte(exclusion.NormalizePath(src)))
	tag := hex.EncodeToString(sum[:])[:8]
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := fmt.Sprintf("%s_%s%s", stem, tag, ext)
	e.flatNames[strings.ToLower(name)] = struct{}{}
	return name
}

func (e *Engine) processDirectory(it workItem) {
	entry := models.ManifestEntry{
		SourcePath:      it.src,
		DestinationPath: it.dest,
		IsDirectory:     true,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := os.MkdirAll(it.dest, 0o700); err != nil {
		entry.Outcome = models.OutcomeFailed
		entry.Reason = "failed to create directory: " + err.Error()
		e.stats.Failures++
	} else {
		entry.Outcome = models.OutcomeCopied
	}
	e.entries = append(e.entries, entry)
}

func (e *Engine) processFile(it workItem) {
	entry := models.ManifestEntry{
		SourcePath:      it.src,
		DestinationPath: it.dest,
		SizeBytes:       it.size,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}

	// Hash the source before touching the destination. An unreadable
	// source fails this one entry only.
	srcHash, err := hashFile(it.src)
	if err != nil {
		e.recordFailure(entry, "failed to hash source: "+err.Error())
		return
	}
	entry.SourceSHA256 = srcHash

	if err := copyFile(it.src, it.dest); err != nil {
		e.recordFailure(entry, "failed to copy: "+err.Error())
		return
	}

	if e.opts.Verify {
		destHash, err := hashFile(it.dest)
		if err != nil {
			e.recordFailure(entry, "failed to hash destination: "+err.Error())
			return
		}
		entry.DestSHA256 = destHash
		if destHash != srcHash {
			// The copied file stays on the destination; it is
			// flagged, not deleted.
			e.recordFailure(entry, "integrity verification failed")
			return
		}
	}

	entry.Outcome = models.OutcomeCopied
	e.entries = append(e.entries, entry)
	e.stats.FilesCopied++
	e.stats.BytesCopied += uint64(it.size)
}

func (e *Engine) recordFailure(entry models.ManifestEntry, reason string) {
	entry.Outcome = models.OutcomeFailed
	entry.Reason = reason
	e.entries = append(e.entries, entry)
	e.stats.Failures++
	utils.LogWarn("Item failed", map[string]string{
		"source": entry.SourcePath,
		"reason": reason,
	})
}

func (e *Engine) recordSkip(src string, size int64, reason string) {
	e.entries = append(e.entries, models.ManifestEntry{
		SourcePath: src,
		SizeBytes:  size,
		Outcome:    models.OutcomeSkipped,
		Reason:     reason,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	e.stats.Skips++
	e.stats.SkippedBytes += uint64(size)
}

// reportProgress notifies the observer when the whole-percent figure moves,
// so reporting cost stays negligible next to the copy work.
func (e *Engine) reportProgress() {
	if e.opts.OnProgress == nil || e.total == 0 {
		return
	}
	percent := e.processed * 100 / e.total
	if percent == e.lastPercent {
		return
	}
	e.lastPercent = percent

	elapsed := time.Since(e.startedAt)
	var remaining time.Duration
	if e.processed > 0 {
		remaining = elapsed / time.Duration(e.processed) * time.Duration(e.total-e.processed)
	}
	e.opts.OnProgress(models.Progress{
		Processed: e.processed,
		Total:     e.total,
		Percent:   percent,
		Elapsed:   elapsed,
		Remaining: remaining,
	})
}

// hashFile computes the SHA-256 of a file by streaming its contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dest, creating parent directories as needed.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
