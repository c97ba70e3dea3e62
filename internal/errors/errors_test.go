package errors

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrNotFound, ExitUser),
			want: "resource not found",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("loading config: %w", ErrInvalidConfig), ExitUser),
			want: "loading config: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
		{
			name: "success code with error",
			err:  NewExitError(New("unexpected"), ExitSuccess),
			want: "unexpected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	tests := []struct {
		name       string
		err        *ExitError
		wantTarget error
		wantIs     bool
	}{
		{
			name:       "unwrap to sentinel error",
			err:        NewExitError(ErrUnknownAgent, ExitUser),
			wantTarget: ErrUnknownAgent,
			wantIs:     true,
		},
		{
			name:       "unwrap through wrapped error",
			err:        NewExitError(Wrap(ErrUnknownServer, "resolving names"), ExitUser),
			wantTarget: ErrUnknownServer,
			wantIs:     true,
		},
		{
			name:       "different sentinel",
			err:        NewExitError(ErrNotFound, ExitUser),
			wantTarget: ErrInvalidConfig,
			wantIs:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.wantTarget); got != tt.wantIs {
				t.Errorf("Is(%v, %v) = %v, want %v", tt.err, tt.wantTarget, got, tt.wantIs)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"user error", NewUserError(ErrUnknownAgent, "pick another"), ExitUser},
		{"system error", NewSystemError(New("disk full"), ""), ExitSystem},
		{"wrapped exit error", Wrap(NewUserError(ErrSelectionAborted, ""), "init"), ExitUser},
		{"plain error", New("boom"), ExitSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError(ErrInvalidConfig)
	if err.Code != ExitUser {
		t.Errorf("Code = %d, want %d", err.Code, ExitUser)
	}
	if err.Suggestion == "" {
		t.Error("expected a suggestion")
	}
}

func TestStructured(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"interaction", NewUserError(ErrInteractionRequired, "pass server names"), "interaction_required"},
		{"aborted", NewUserError(ErrSelectionAborted, ""), "aborted"},
		{"unknown agent", Wrapf(ErrUnknownAgent, "agent %q", "vim"), "unknown_agent"},
		{"unknown server", NewUserError(ErrUnknownServer, ""), "unknown_server"},
		{"ambiguous", NewUserError(&AmbiguousError{Candidates: map[string][]string{"fetch": {"a/fetch", "b/fetch"}}}, ""), "ambiguous"},
		{"generic user", NewUserError(New("bad flag"), ""), "user_error"},
		{"internal", New("boom"), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]Payload
			if err := json.Unmarshal(Structured(tt.err), &got); err != nil {
				t.Fatalf("Structured() produced invalid JSON: %v", err)
			}
			p, ok := got["error"]
			if !ok {
				t.Fatal("missing error key")
			}
			if p.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", p.Code, tt.wantCode)
			}
			if p.Message == "" {
				t.Error("expected non-empty message")
			}
		})
	}
}

func TestStructured_Candidates(t *testing.T) {
	amb := &AmbiguousError{Candidates: map[string][]string{"git": {"acme/git", "corp-git"}}}
	var got map[string]Payload
	if err := json.Unmarshal(Structured(amb), &got); err != nil {
		t.Fatal(err)
	}
	c := got["error"].Candidates["git"]
	if len(c) != 2 || c[0] != "acme/git" || c[1] != "corp-git" {
		t.Errorf("candidates = %v", c)
	}
}
