// Package exclusion decides whether a filesystem path lies under a protected
// system area and must never be queued by the deep scan.
package exclusion

import (
	"os"
	"runtime"
	"strings"
)

// Filter holds a precomputed set of normalized path prefixes. It is read-only
// after construction and safe for concurrent use without synchronization.
type Filter struct {
	prefixes []string
}

// NormalizePath canonicalizes a path for matching: separators are unified to
// forward slashes, the path is lower-cased (the target filesystems are
// case-insensitive), and trailing separators are dropped.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.ToLower(p)
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return p
}

// NewFilter builds a filter from the given path prefixes. Empty prefixes are
// ignored.
func NewFilter(prefixes []string) *Filter {
	f := &Filter{}
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		f.prefixes = append(f.prefixes, NormalizePath(p))
	}
	return f
}

// DefaultFilter builds the process-wide filter from well-known system
// directories for the current platform. On Windows the roots come from the
// environment so relocated installations are still covered.
func DefaultFilter() *Filter {
	if runtime.GOOS == "windows" {
		prefixes := []string{
			envOr("SystemRoot", `C:\Windows`),
			envOr("ProgramFiles", `C:\Program Files`),
			envOr("ProgramFiles(x86)", `C:\Program Files (x86)`),
			envOr("ProgramData", `C:\ProgramData`),
			envOr("SystemRoot", `C:\Windows`) + `\WinSxS`,
		}
		return NewFilter(prefixes)
	}
	return NewFilter([]string{"/proc", "/sys", "/dev", "/run", "/boot"})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// IsExcluded reports whether the path's normalized form begins with any
// exclusion prefix. Matches are prefix matches on whole path segments, so
// excluding C:\Windows also excludes everything beneath it but not a sibling
// like C:\WindowsBackup.
func (f *Filter) IsExcluded(path string) bool {
	norm := NormalizePath(path)
	for _, prefix := range f.prefixes {
		if hasPathPrefix(norm, prefix) {
			return true
		}
	}
	return false
}

// hasPathPrefix reports whether norm equals prefix or lies beneath it.
func hasPathPrefix(norm, prefix string) bool {
	if !strings.HasPrefix(norm, prefix) {
		return false
	}
	if len(norm) == len(prefix) {
		return true
	}
	return norm[len(prefix)] == '/'
}
