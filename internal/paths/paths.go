package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "mcpkit"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// Home returns the user's home directory, or "" if it cannot be determined.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errors.Wrap(ErrHomeDirNotFound, "resolving home directory")
	}
	return home, nil
}

// ExpandHome replaces a leading "~" with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// CacheHome returns the XDG cache home directory.
// On Linux: ~/.cache
// On macOS: ~/Library/Caches
// On Windows: %LOCALAPPDATA%\cache
func CacheHome() string {
	return xdg.CacheHome
}

// ConfigDir returns <ConfigHome>/mcpkit.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// CatalogCacheDir returns the directory downloaded catalogs are cached in.
// Returns: <CacheHome>/mcpkit/catalog/
func CatalogCacheDir() string {
	return filepath.Join(CacheHome(), AppName, "catalog")
}

// BackupDir returns the directory agent document backups are written to.
// Returns: <ConfigHome>/mcpkit/backups/
func BackupDir() string {
	return filepath.Join(ConfigDir(), "backups")
}
