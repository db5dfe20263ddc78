// Package scanner implements the deep filesystem scan: a filename-pattern
// pass for known wallet artefact names and a bounded keyword-content pass
// over plain-text files. Both passes feed the artefact queue; the queue's
// dedup-by-path guarantees a file matched by both passes is queued once.
package scanner

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ilexum-group/cobra/internal/exclusion"
	"github.com/ilexum-group/cobra/internal/queue"
	"github.com/ilexum-group/cobra/internal/utils"
)

// DefaultMaxContentBytes caps the keyword-content pass at 50 MiB per file so
// a pathological log cannot stall the scan.
const DefaultMaxContentBytes = 50 * 1024 * 1024

// DefaultWorkers bounds the keyword-content worker pool. The pass is
// I/O-dominated, so a small pool is enough.
const DefaultWorkers = 8

// Scanner walks volume roots and queues matching artefacts.
type Scanner struct {
	Filter          *exclusion.Filter
	Queue           *queue.Queue
	MaxContentBytes int64
	Workers         int
}

// New creates a scanner with default content ceiling and worker count.
func New(filter *exclusion.Filter, q *queue.Queue) *Scanner {
	return &Scanner{
		Filter:          filter,
		Queue:           q,
		MaxContentBytes: DefaultMaxContentBytes,
		Workers:         DefaultWorkers,
	}
}

// Scan walks each requested volume root. Inaccessible directories and
// unreadable files are logged and skipped; they never fail the scan. Only a
// cancelled context ends the scan early.
func (s *Scanner) Scan(ctx context.Context, roots []string) error {
	for _, root := range roots {
		if err := s.scanRoot(ctx, root); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) scanRoot(ctx context.Context, root string) error {
	utils.LogInfo("Deep scan started", map[string]string{"root": root})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	matched := 0
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-gctx.Done():
			return gctx.Err()
		default:
		}

		if err != nil {
			utils.LogDebug("Scan entry not accessible", map[string]string{
				"path":  path,
				"error": err.Error(),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if s.Filter.IsExcluded(path) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if s.Filter.IsExcluded(path) {
			return nil
		}

		name := strings.ToLower(d.Name())

		// Filename-pattern pass: fast path, no content inspection.
		if matchesWalletName(name) {
			if s.Queue.Add(path) {
				matched++
			}
			return nil
		}

		// Keyword-content pass: bounded-size plain-text files only.
		if !hasTextExtension(name) {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > s.maxContentBytes() {
			return nil
		}
		candidate := path
		g.Go(func() error {
			if contentMatches(candidate) {
				s.Queue.Add(candidate)
			}
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}

	utils.LogInfo("Deep scan finished", map[string]string{
		"root":         root,
		"name_matches": strconv.Itoa(matched),
	})
	return nil
}

func (s *Scanner) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return DefaultWorkers
}

func (s *Scanner) maxContentBytes() int64 {
	if s.MaxContentBytes > 0 {
		return s.MaxContentBytes
	}
	return DefaultMaxContentBytes
}

// contentMatches scans the file line by line for the keyword pattern. Read
// errors (locked file, permission denied, malformed encoding) are logged and
// treated as a non-match.
func contentMatches(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		utils.LogDebug("Keyword scan could not open file", map[string]string{
			"path":  path,
			"error": err.Error(),
		})
		return false
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if keywordPattern.Match(sc.Bytes()) {
			return true
		}
	}
	if err := sc.Err(); err != nil {
		utils.LogDebug("Keyword scan read error", map[string]string{
			"path":  path,
			"error": err.Error(),
		})
	}
	return false
}
