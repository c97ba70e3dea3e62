// Package editor launches the user's text editor on an mcpkit or agent
// configuration file.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// EnvEditor overrides $EDITOR and $VISUAL for mcpkit only.
const EnvEditor = "MCPKIT_EDITOR"

// Streams connects the editor process to a terminal.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Open runs the editor on path and waits for it to exit. The editor value
// may carry arguments ("code --wait").
func Open(ctx context.Context, path string, s Streams) error {
	argv := strings.Fields(Command())
	if len(argv) == 0 {
		return errors.New("no editor configured")
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = s.In
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Command returns the editor to use: $MCPKIT_EDITOR, $EDITOR, $VISUAL,
// then nano if installed, then vi.
func Command() string {
	for _, env := range []string{EnvEditor, "EDITOR", "VISUAL"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
