package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetentionCount is the number of backups kept per agent.
const DefaultRetentionCount = 5

// IDFormat is the time layout of backup identifiers.
const IDFormat = "20060102T150405"

const manifestFile = "manifest.json"

var (
	// ErrNoBackupsFound indicates no backups exist for the agent.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a stored file no longer matches the
	// SHA-256 recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrNothingToBackUp indicates none of the given paths exist.
	ErrNothingToBackUp = errors.New("no files to back up")
)

// Manifest describes one backup. It is stored as manifest.json in the
// backup directory.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Agent     string    `json:"agent"`
	Files     []File    `json:"files"`

	// ToolVersion is the mcpkit version that wrote the backup.
	ToolVersion string `json:"tool_version"`

	// ID is the directory name; populated on load, not stored.
	ID string `json:"-"`
}

// File is one backed up document.
type File struct {
	OriginalPath string      `json:"original_path"`
	RelPath      string      `json:"rel_path"`
	SHA256Hash   string      `json:"sha256_hash"`
	Mode         fs.FileMode `json:"mode"`
}
