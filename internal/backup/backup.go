package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/pkg/fileutil"
)

// Manager handles backup creation, restoration and pruning.
type Manager struct {
	fs             afero.Fs
	rootDir        string
	retentionCount int
	toolVersion    string
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithRetentionCount sets the number of backups to keep per agent.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// WithToolVersion records the mcpkit version in new manifests.
func WithToolVersion(v string) Option {
	return func(m *Manager) {
		m.toolVersion = v
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager returns a Manager storing backups under rootDir on fsys.
func NewManager(fsys afero.Fs, rootDir string, opts ...Option) *Manager {
	m := &Manager{
		fs:             fsys,
		rootDir:        rootDir,
		retentionCount: DefaultRetentionCount,
		toolVersion:    "dev",
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backup copies the existing files among paths into a new backup for
// agentID, then prunes backups beyond the retention count. Missing paths
// are skipped; if none exist ErrNothingToBackUp is returned.
func (m *Manager) Backup(agentID string, paths []string) (*Manifest, error) {
	if agentID == "" {
		return nil, errors.New("agent is required")
	}
	if m.rootDir == "" {
		return nil, errors.New("backup directory is not set")
	}

	var existing []string
	for _, p := range paths {
		info, err := m.fs.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if info.IsDir() {
			return nil, errors.Newf("%s is a directory", p)
		}
		existing = append(existing, p)
	}
	if len(existing) == 0 {
		return nil, ErrNothingToBackUp
	}

	created := m.now()
	backupID, err := m.newID(agentID, created)
	if err != nil {
		return nil, err
	}
	backupPath := m.backupPath(agentID, backupID)
	if err := m.fs.MkdirAll(backupPath, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating backup directory")
	}

	files := make([]File, 0, len(existing))
	for _, src := range existing {
		relPath := generateRelPath(src)
		hash, mode, err := m.copyFile(src, filepath.Join(backupPath, relPath))
		if err != nil {
			_ = m.fs.RemoveAll(backupPath)
			return nil, errors.Wrapf(err, "backing up %s", src)
		}
		files = append(files, File{OriginalPath: src, RelPath: relPath, SHA256Hash: hash, Mode: mode})
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   created.UTC(),
		Agent:       agentID,
		Files:       files,
		ToolVersion: m.toolVersion,
		ID:          backupID,
	}
	if err := fileutil.AtomicWriteJSON(m.fs, filepath.Join(backupPath, manifestFile), manifest, 0o644); err != nil {
		_ = m.fs.RemoveAll(backupPath)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(agentID, m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// newID returns a timestamp identifier not yet used for agentID.
func (m *Manager) newID(agentID string, t time.Time) (string, error) {
	base := t.Format(IDFormat)
	id := base
	for n := 1; ; n++ {
		exists, err := afero.DirExists(m.fs, m.backupPath(agentID, id))
		if err != nil {
			return "", errors.Wrap(err, "checking backup directory")
		}
		if !exists {
			return id, nil
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// Restore verifies the backup and copies its files back to their original
// locations. The current files are backed up first so a restore can itself
// be undone.
func (m *Manager) Restore(agentID, backupID string) (*Manifest, error) {
	manifest, err := m.Get(agentID, backupID)
	if err != nil {
		return nil, err
	}
	backupPath := m.backupPath(agentID, backupID)

	// Read everything up front: backing up the current state below may
	// prune this very backup.
	contents := make([][]byte, len(manifest.Files))
	for i, f := range manifest.Files {
		data, err := afero.ReadFile(m.fs, filepath.Join(backupPath, f.RelPath))
		if err != nil {
			return nil, errors.Wrapf(err, "reading backup file %s", f.RelPath)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != f.SHA256Hash {
			return nil, errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", f.RelPath)
		}
		contents[i] = data
	}

	current := make([]string, 0, len(manifest.Files))
	for _, f := range manifest.Files {
		current = append(current, f.OriginalPath)
	}
	if _, err := m.Backup(agentID, current); err != nil && !errors.Is(err, ErrNothingToBackUp) {
		return nil, errors.Wrap(err, "backing up current files")
	}

	for i, f := range manifest.Files {
		if err := m.fs.MkdirAll(filepath.Dir(f.OriginalPath), 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating directory for %s", f.OriginalPath)
		}
		if err := fileutil.AtomicWriteFile(m.fs, f.OriginalPath, contents[i], f.Mode.Perm()); err != nil {
			return nil, errors.Wrapf(err, "restoring %s", f.OriginalPath)
		}
	}
	return manifest, nil
}

// List returns the backups of agentID, newest first.
func (m *Manager) List(agentID string) ([]Manifest, error) {
	if agentID == "" {
		return nil, errors.New("agent is required")
	}

	entries, err := afero.ReadDir(m.fs, m.agentDir(agentID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(agentID, entry.Name())
		if err != nil {
			// Not a backup directory
			continue
		}
		manifests = append(manifests, *manifest)
	}
	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return manifests, nil
}

// Latest returns the newest backup of agentID.
func (m *Manager) Latest(agentID string) (*Manifest, error) {
	manifests, err := m.List(agentID)
	if err != nil {
		return nil, err
	}
	return &manifests[0], nil
}

// Prune removes all but the newest keep backups of agentID.
func (m *Manager) Prune(agentID string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}
	manifests, err := m.List(agentID)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}
	for i := keep; i < len(manifests); i++ {
		if err := m.fs.RemoveAll(m.backupPath(agentID, manifests[i].ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}
	return nil
}

// Get returns the manifest of one backup.
func (m *Manager) Get(agentID, backupID string) (*Manifest, error) {
	if agentID == "" {
		return nil, errors.New("agent is required")
	}
	if backupID == "" {
		return nil, errors.New("backup ID is required")
	}

	data, err := afero.ReadFile(m.fs, filepath.Join(m.backupPath(agentID, backupID), manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s", backupID)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = backupID
	return &manifest, nil
}

// Root returns the directory all backups live under.
func (m *Manager) Root() string {
	return m.rootDir
}

// Dir returns the directory holding backup backupID of agentID.
func (m *Manager) Dir(agentID, backupID string) string {
	return m.backupPath(agentID, backupID)
}

func (m *Manager) backupPath(agentID, backupID string) string {
	return filepath.Join(m.agentDir(agentID), backupID)
}

func (m *Manager) agentDir(agentID string) string {
	return filepath.Join(m.rootDir, agentID)
}

// copyFile copies src to dst and returns the content hash and the source
// permissions, which dst also receives.
func (m *Manager) copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	in, err := m.fs.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = info.Mode().Perm()

	if err := m.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, errors.Wrap(err, "creating parent directory")
	}
	out, err := m.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		out.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := out.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}
	if err := m.fs.Chmod(dst, mode); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}
	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath maps an absolute path to a relative one inside a backup
// directory. Colons are dropped so Windows drive letters stay valid.
func generateRelPath(absPath string) string {
	clean := filepath.Clean(absPath)
	clean = strings.TrimLeft(clean, `/\`)
	return strings.ReplaceAll(clean, ":", "")
}
