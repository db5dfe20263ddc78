package scanner

import (
	"regexp"
	"strings"
)

// matchKind selects how a NamePattern is evaluated against a normalized
// (lower-cased) file name.
type matchKind int

const (
	matchExact matchKind = iota
	matchPrefix
	matchSuffix
	matchContains
	matchRegex
)

// NamePattern is one filename matcher. Patterns are data, not code, so the
// match table can be tested and extended independently.
type NamePattern struct {
	kind  matchKind
	value string
	re    *regexp.Regexp
}

func exact(v string) NamePattern    { return NamePattern{kind: matchExact, value: v} }
func suffix(v string) NamePattern   { return NamePattern{kind: matchSuffix, value: v} }
func contains(v string) NamePattern { return NamePattern{kind: matchContains, value: v} }
func re(v string) NamePattern {
	return NamePattern{kind: matchRegex, re: regexp.MustCompile(v)}
}

// Matches evaluates the pattern against a lower-cased base name.
func (p NamePattern) Matches(name string) bool {
	switch p.kind {
	case matchExact:
		return name == p.value
	case matchPrefix:
		return strings.HasPrefix(name, p.value)
	case matchSuffix:
		return strings.HasSuffix(name, p.value)
	case matchContains:
		return strings.Contains(name, p.value)
	case matchRegex:
		return p.re.MatchString(name)
	}
	return false
}

// walletNamePatterns lists filenames that identify wallet artefacts on name
// alone; matches are queued without content inspection.
var walletNamePatterns = []NamePattern{
	exact("wallet.dat"),
	suffix(".wallet"),
	contains("keystore"),
	re(`^utc--.*\.json$`), // geth/parity key files
	suffix(".key"),
	suffix(".pem"),
	suffix(".seed"),
	suffix(".mnemonic"),
}

// textExtensions is the plain-text whitelist for the keyword-content pass.
var textExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
	".log": {},
}

// keywordPattern matches recovery-phrase and credential vocabulary inside
// text files. Whitespace between "private" and "key" is tolerated.
var keywordPattern = regexp.MustCompile(`(?i)(mnemonic|seed|recovery|password|private\s*key|phrase)`)

// matchesWalletName reports whether the lower-cased base name matches any
// wallet artefact pattern.
func matchesWalletName(name string) bool {
	for _, p := range walletNamePatterns {
		if p.Matches(name) {
			return true
		}
	}
	return false
}

// hasTextExtension reports whether the lower-cased base name carries one of
// the whitelisted plain-text extensions.
func hasTextExtension(name string) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return false
	}
	_, ok := textExtensions[name[idx:]]
	return ok
}
