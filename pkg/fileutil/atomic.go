// Package fileutil provides file system utilities including atomic write operations.
//
// All helpers take an [afero.Fs] so callers can run them against the real
// disk or an in-memory file system in tests.
package fileutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// This ensures interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Same directory so the rename stays on one filesystem
	tmp, err := afero.TempFile(fsys, dir, ".mcpkit-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if rename failed (file still exists)
		if ok, _ := afero.Exists(fsys, tmpName); ok {
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := fsys.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// MarshalJSON encodes v with 2-space indentation, no HTML escaping and a
// trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return buf.Bytes(), nil
}

// AtomicWriteJSON writes v as indented JSON to path atomically with perm.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteJSON(fsys afero.Fs, path string, v any, perm os.FileMode) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return AtomicWriteFile(fsys, path, data, perm)
}

// AtomicWriteYAML writes v as YAML to path atomically.
// The file is created with 0644 permissions.
func AtomicWriteYAML(fsys afero.Fs, path string, v any) (err error) {
	// yaml.Marshal panics on unmarshalable types; recover and return error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(fsys, path, data, 0o644)
}
