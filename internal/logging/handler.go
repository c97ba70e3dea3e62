package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpkit/internal/redact"
)

// Handler writes one line per record: time, level, message, then key=value
// attributes. Levels are colored when the writer is a color terminal.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
	pal    *palette
}

// palette is nil when colors are off.
type palette struct {
	time, key                *color.Color
	trace, debug, info, warn *color.Color
	err                      *color.Color
}

func newPalette() *palette {
	return &palette{
		time:  color.New(color.FgHiBlack),
		key:   color.New(color.FgCyan),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
	}
}

// NewHandler returns a text handler writing to out.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	if SupportsColor(out) {
		h.pal = newPalette()
	}
	return h
}

// Enabled reports whether level reaches the configured minimum (Info when
// unset).
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r into a single line.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(h.paint(h.timeColor(), r.Time.Format(time.Kitchen)))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", h.levelLabel(r.Level), r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) levelLabel(level slog.Level) string {
	label := level.String()
	if level <= LevelTrace {
		label = "TRACE"
	}
	if h.pal == nil {
		return label
	}
	switch {
	case level >= slog.LevelError:
		return h.pal.err.Sprint(label)
	case level >= slog.LevelWarn:
		return h.pal.warn.Sprint(label)
	case level >= slog.LevelInfo:
		return h.pal.info.Sprint(label)
	case level > LevelTrace:
		return h.pal.debug.Sprint(label)
	default:
		return h.pal.trace.Sprint(label)
	}
}

func (h *Handler) timeColor() *color.Color {
	if h.pal == nil {
		return nil
	}
	return h.pal.time
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) writeAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	if h.pal != nil {
		key = h.pal.key.Sprint(key)
	}
	fmt.Fprintf(b, " %s=%v", key, maskValue(a.Key, a.Value.Any()))
}

// maskValue hides credentials: values under secret-looking keys, userinfo
// in "url" attributes and strings with a known token prefix.
func maskValue(key string, value any) any {
	switch {
	case redact.ShouldMaskAttr(key):
		return redact.Value(fmt.Sprint(value))
	case key == "url":
		return redact.URL(fmt.Sprint(value))
	}
	if s, ok := value.(string); ok && redact.HasTokenPrefix(s) {
		return redact.Value(s)
	}
	return value
}

// WithAttrs returns a Handler that also writes attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clip(h.attrs), attrs...)
	return &clone
}

// WithGroup returns a Handler that prefixes later keys with name and a dot.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}
