package fileutil

import (
	"io"

	"github.com/spf13/afero"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// MaxFileSize is the largest agent document or catalog file we'll read (8MB).
const MaxFileSize = 8 * 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
// It returns an error if the file is larger than the limit.
func ReadFileWithLimit(fsys afero.Fs, path string) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	return data, nil
}
