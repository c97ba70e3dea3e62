package config

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thoreinstein/mcpkit/internal/agent"
	"github.com/thoreinstein/mcpkit/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not 1.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidAgent indicates an unrecognized default agent.
	ErrInvalidAgent = errors.New("invalid default agent")

	// ErrInvalidRepo indicates catalog.repo is not owner/name.
	ErrInvalidRepo = errors.New("invalid catalog repo")

	// ErrInvalidPageSize indicates selector.page_size is out of range.
	ErrInvalidPageSize = errors.New("selector.page_size must be between 1 and 100")

	// ErrInvalidRetention indicates backup.retention is negative.
	ErrInvalidRetention = errors.New("backup.retention must be >= 0")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

var repoPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	if cfg.DefaultAgent != "" && !agent.Valid(cfg.DefaultAgent) {
		errs = append(errs, &FieldError{Field: "default_agent", Value: cfg.DefaultAgent, Err: ErrInvalidAgent})
	}

	if cfg.Catalog.Repo != "" && !repoPattern.MatchString(cfg.Catalog.Repo) {
		errs = append(errs, &FieldError{Field: "catalog.repo", Value: cfg.Catalog.Repo, Err: ErrInvalidRepo})
	}

	if err := validatePath(cfg.Catalog.File); err != nil {
		errs = append(errs, &FieldError{Field: "catalog.file", Value: cfg.Catalog.File, Err: err})
	}

	if cfg.Selector.PageSize < 1 || cfg.Selector.PageSize > 100 {
		errs = append(errs, ErrInvalidPageSize)
	}

	if cfg.Backup.Retention < 0 {
		errs = append(errs, ErrInvalidRetention)
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	if cleaned := filepath.Clean(path); cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}
	return nil
}

// FieldError represents an error for a specific config field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
