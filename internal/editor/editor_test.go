package editor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name   string
		mcpkit string
		editor string
		visual string
		want   string
	}{
		{"mcpkit override wins", "hx", "nvim", "code", "hx"},
		{"editor before visual", "", "nvim", "code", "nvim"},
		{"visual", "", "", "code --wait", "code --wait"},
		{"blank values are unset", "  ", "", "vscode", "vscode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvEditor, tt.mcpkit)
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)

			if got := Command(); got != tt.want {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommand_Fallback(t *testing.T) {
	t.Setenv(EnvEditor, "")
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	want := "vi"
	if _, err := exec.LookPath("nano"); err == nil {
		want = "nano"
	}
	if got := Command(); got != want {
		t.Errorf("Command() = %q, want %q", got, want)
	}
}

func TestOpen_PassesArgumentsAndPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the editor")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-editor.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "mcp.json")
	if err := os.WriteFile(target, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvEditor, script+" --wait")

	var out bytes.Buffer
	if err := Open(context.Background(), target, Streams{Out: &out, Err: &out}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "--wait "+target {
		t.Errorf("editor args = %q, want %q", got, "--wait "+target)
	}
}

func TestOpen_MissingEditor(t *testing.T) {
	t.Setenv(EnvEditor, "non-existent-editor-12345")

	if err := Open(context.Background(), "mcp.json", Streams{}); err == nil {
		t.Error("expected error for a missing editor")
	}
}
