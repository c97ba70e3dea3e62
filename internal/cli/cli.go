// Package cli provides terminal output helpers shared by the mcpkit commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"

	"github.com/thoreinstein/mcpkit/internal/logging"
)

// ColorEnv overrides color detection: truecolor, 256, 16 or none.
const ColorEnv = "MCPKIT_COLOR"

// InitColorProfile picks the lipgloss color profile for w. MCPKIT_COLOR
// wins over detection; writers that are not color terminals get plain
// text.
func InitColorProfile(w io.Writer) {
	lipgloss.SetColorProfile(ColorProfile(w))
}

// ColorProfile returns the termenv profile for w.
func ColorProfile(w io.Writer) termenv.Profile {
	if env := os.Getenv(ColorEnv); env != "" {
		switch strings.ToLower(env) {
		case "truecolor", "true", "24bit":
			return termenv.TrueColor
		case "256", "ansi256":
			return termenv.ANSI256
		case "16", "ansi", "basic":
			return termenv.ANSI
		case "none", "off", "ascii":
			return termenv.Ascii
		}
	}
	if !logging.SupportsColor(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// Printer writes user-facing status lines. Colors are used only when the
// writer is a color-capable terminal.
type Printer struct {
	w io.Writer

	success *color.Color
	warn    *color.Color
	fail    *color.Color
	header  *color.Color
	dim     *color.Color
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{
		w:       w,
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
		header:  color.New(color.FgCyan, color.Bold),
		dim:     color.New(color.FgHiBlack),
	}
	if ColorProfile(w) == termenv.Ascii {
		for _, c := range []*color.Color{p.success, p.warn, p.fail, p.header, p.dim} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{p.success, p.warn, p.fail, p.header, p.dim} {
			c.EnableColor()
		}
	}
	return p
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Success prints a "✓" line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Sprint("✓ ")+fmt.Sprintf(format, args...))
}

// Warn prints a "⚠" line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.warn.Sprint("⚠ "+fmt.Sprintf(format, args...)))
}

// Fail prints a "✗" line.
func (p *Printer) Fail(format string, args ...any) {
	fmt.Fprintln(p.w, p.fail.Sprint("✗ ")+fmt.Sprintf(format, args...))
}

// Header prints a bold heading.
func (p *Printer) Header(format string, args ...any) {
	fmt.Fprintln(p.w, p.header.Sprintf(format, args...))
}

// Dim prints a muted line.
func (p *Printer) Dim(format string, args ...any) {
	fmt.Fprintln(p.w, p.dim.Sprintf(format, args...))
}

// Println prints a plain line.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Printf prints plain formatted text.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Bullet prints an indented list item.
func (p *Printer) Bullet(format string, args ...any) {
	fmt.Fprintln(p.w, "  • "+fmt.Sprintf(format, args...))
}
