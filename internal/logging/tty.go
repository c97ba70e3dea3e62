package logging

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTTY reports whether w is a terminal. Writers that do not expose a file
// descriptor never are.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI colors should be written to w.
func SupportsColor(w io.Writer) bool {
	return !colorDisabled() && IsTTY(w)
}

// colorDisabled honours NO_COLOR (https://no-color.org), TERM=dumb and
// MCPKIT_COLOR=none|off|ascii.
func colorDisabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	if os.Getenv("TERM") == "dumb" {
		return true
	}
	switch strings.ToLower(os.Getenv("MCPKIT_COLOR")) {
	case "none", "off", "ascii":
		return true
	}
	return false
}
