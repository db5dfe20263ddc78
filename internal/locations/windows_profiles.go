package locations

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/osv-scalibr/common/windows/registry"

	"github.com/ilexum-group/cobra/internal/utils"
)

// profileListKey enumerates local user profiles in the SOFTWARE hive.
const profileListKey = `Microsoft\Windows NT\CurrentVersion\ProfileList`

func windowsSoftwareHivePath() string {
	systemRoot := os.Getenv("SystemRoot")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	return filepath.Join(systemRoot, "System32", "config", "SOFTWARE")
}

// windowsProfileRoots reads the ProfileList from the offline SOFTWARE hive so
// known-location enumeration covers every local user, not just the caller.
// Any failure degrades to the calling user's profile only.
func windowsProfileRoots() []string {
	roots := make([]string, 0)

	opener := registry.NewOfflineOpener(windowsSoftwareHivePath())
	hive, err := opener.Open()
	if err != nil {
		utils.LogDebug("SOFTWARE hive not readable, limiting to current user", map[string]string{
			"error": err.Error(),
		})
		return roots
	}
	defer func() { _ = hive.Close() }()

	key, err := hive.OpenKey("", profileListKey)
	if err != nil {
		return roots
	}
	subkeys, err := key.Subkeys()
	if err != nil {
		return roots
	}

	for _, sub := range subkeys {
		val, err := sub.ValueString("ProfileImagePath")
		if err != nil {
			continue
		}
		profilePath := strings.TrimRight(val, "\x00")
		if profilePath == "" {
			continue
		}
		if isSystemProfile(filepath.Base(profilePath)) {
			continue
		}
		roots = append(roots, profilePath)
	}

	return roots
}

// isSystemProfile filters the built-in accounts that never hold user wallets.
func isSystemProfile(name string) bool {
	switch name {
	case "", "Default", "Default User", "All Users", "Public",
		"systemprofile", "LocalService", "NetworkService":
		return true
	}
	return false
}
