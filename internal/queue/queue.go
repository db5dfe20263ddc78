// Package queue implements the ordered, deduplicated set of artefact paths
// awaiting collection.
package queue

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ilexum-group/cobra/internal/exclusion"
)

// Queue is an insertion-ordered set of absolute source paths. Add is
// synchronized because the deep scan may enqueue from multiple workers.
type Queue struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	paths []string
}

// New creates an empty artefact queue.
func New() *Queue {
	return &Queue{seen: make(map[string]struct{})}
}

// Add appends the path if it exists on the filesystem and is not already
// present. A path that fails the existence check is silently dropped; that is
// an expected outcome for known-location templates, not an error. Returns
// true if the path was appended.
func (q *Queue) Add(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	key := exclusion.NormalizePath(path)

	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[key]; ok {
		return false
	}
	q.seen[key] = struct{}{}
	q.paths = append(q.paths, filepath.Clean(path))
	return true
}

// Contains reports whether the path is already queued.
func (q *Queue) Contains(path string) bool {
	key := exclusion.NormalizePath(path)
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.seen[key]
	return ok
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.paths)
}

// Paths returns a copy of the queued paths in insertion order.
func (q *Queue) Paths() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.paths))
	copy(out, q.paths)
	return out
}

// EstimateTotalBytes sums the sizes of queued entries that are regular files.
// Directories contribute zero and unreadable entries are skipped silently;
// the estimate feeds the capacity gate, which carries its own safety reserve.
func (q *Queue) EstimateTotalBytes() uint64 {
	var total uint64
	for _, p := range q.Paths() {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			total += uint64(info.Size())
		}
	}
	return total
}

// Preview returns up to maxEntries queued paths, each truncated to its first
// treeDepth segments past the volume root, for display purposes. The queue is
// not mutated.
func (q *Queue) Preview(maxEntries, treeDepth int) []string {
	paths := q.Paths()
	if maxEntries < 0 {
		maxEntries = 0
	}
	if maxEntries < len(paths) {
		paths = paths[:maxEntries]
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, truncatePath(p, treeDepth))
	}
	return out
}

// truncatePath keeps the volume name plus the first depth path segments.
func truncatePath(p string, depth int) string {
	if depth <= 0 {
		return p
	}
	vol := filepath.VolumeName(p)
	rest := strings.Trim(strings.ReplaceAll(p[len(vol):], "\\", "/"), "/")
	if rest == "" {
		return p
	}
	segments := strings.Split(rest, "/")
	if len(segments) <= depth {
		return p
	}
	sep := string(filepath.Separator)
	return vol + sep + strings.Join(segments[:depth], sep)
}
