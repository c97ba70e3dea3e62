package errors

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, cancelled
	// selection, unknown agent or server).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownAgent indicates the agent identifier is not in the agent table.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrUnknownServer indicates a server name matched nothing in the catalog
	// or in the agent document.
	ErrUnknownServer = errors.New("unknown server")

	// ErrInteractionRequired indicates a command needed a prompt while
	// running in machine-readable mode.
	ErrInteractionRequired = errors.New("interaction required")

	// ErrSelectionAborted indicates the user aborted a selection with Escape.
	ErrSelectionAborted = errors.New("selection aborted")

	// ErrNoTerminal indicates an interactive prompt was requested without a terminal.
	ErrNoTerminal = errors.New("no terminal available")
)

// Re-exported helpers so callers only import this package.
var (
	New   = errors.New
	Newf  = errors.Newf
	Wrap  = errors.Wrap
	Wrapf = errors.Wrapf
	Is    = errors.Is
	As    = errors.As
)

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: mcpkit config list",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit code carried by err. Errors that are not an
// ExitError map to ExitSystem; nil maps to ExitSuccess.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSystem
}

// Payload is the machine-readable error body written in --json mode.
type Payload struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Suggestion string              `json:"suggestion,omitempty"`
	Candidates map[string][]string `json:"candidates,omitempty"`
}

// AmbiguousError reports removal names that matched more than one
// configured server.
type AmbiguousError struct {
	Candidates map[string][]string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%d name(s) matched more than one server", len(e.Candidates))
}

// Structured converts err into the JSON error envelope
// {"error": {"code": ..., "message": ...}}.
func Structured(err error) []byte {
	p := Payload{Code: codeFor(err), Message: err.Error()}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		p.Suggestion = exitErr.Suggestion
	}
	var ambErr *AmbiguousError
	if errors.As(err, &ambErr) {
		p.Candidates = ambErr.Candidates
	}

	out, mErr := json.Marshal(map[string]Payload{"error": p})
	if mErr != nil {
		return []byte(`{"error":{"code":"internal","message":"failed to encode error"}}`)
	}
	return out
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, ErrInteractionRequired):
		return "interaction_required"
	case errors.Is(err, ErrSelectionAborted):
		return "aborted"
	case errors.Is(err, ErrUnknownAgent):
		return "unknown_agent"
	case errors.Is(err, ErrUnknownServer):
		return "unknown_server"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoTerminal):
		return "no_terminal"
	}
	var ambErr *AmbiguousError
	if errors.As(err, &ambErr) {
		return "ambiguous"
	}
	if ExitCode(err) == ExitUser {
		return "user_error"
	}
	return "internal"
}
