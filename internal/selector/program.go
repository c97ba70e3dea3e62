package selector

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/logging"
)

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	Toggle     key.Binding
	SelectAll  key.Binding
	SelectNone key.Binding
	Backspace  key.Binding
	Clear      key.Binding
	Confirm    key.Binding
	Abort      key.Binding
	Quit       key.Binding
}

func newKeyMap(opts Options) keyMap {
	km := keyMap{
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "navigate")),
		Down:       key.NewBinding(key.WithKeys("down")),
		PrevPage:   key.NewBinding(key.WithKeys("left", "pgup"), key.WithHelp("←/→", "page")),
		NextPage:   key.NewBinding(key.WithKeys("right", "pgdown")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		SelectAll:  key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "all")),
		SelectNone: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "none")),
		Backspace:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "edit search")),
		Clear:      key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "clear search")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Abort:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
	if opts.Searchable {
		// "q" is search text here; only the interrupt quits.
		km.Quit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit (q types in search)"))
	} else {
		km.Backspace.SetEnabled(false)
		km.Clear.SetEnabled(false)
	}
	if !opts.Multi {
		km.Toggle.SetEnabled(false)
		km.SelectAll.SetEnabled(false)
		km.SelectNone.SetEnabled(false)
	}
	return km
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Toggle, k.Confirm, k.Abort, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.PrevPage, k.Toggle, k.Confirm},
		{k.Backspace, k.Clear, k.SelectAll, k.SelectNone},
		{k.Abort, k.Quit},
	}
}

// Decode maps a terminal key press to engine events. Pasted text yields one
// event per rune.
func (k keyMap) Decode(msg tea.KeyMsg) []Event {
	switch {
	case key.Matches(msg, k.Up):
		return []Event{{Key: KeyUp}}
	case key.Matches(msg, k.Down):
		return []Event{{Key: KeyDown}}
	case key.Matches(msg, k.PrevPage):
		return []Event{{Key: KeyPrevPage}}
	case key.Matches(msg, k.NextPage):
		return []Event{{Key: KeyNextPage}}
	case key.Matches(msg, k.Toggle):
		return []Event{{Key: KeyToggle}}
	case key.Matches(msg, k.SelectAll):
		return []Event{{Key: KeySelectAll}}
	case key.Matches(msg, k.SelectNone):
		return []Event{{Key: KeySelectNone}}
	case key.Matches(msg, k.Backspace):
		return []Event{{Key: KeyBackspace}}
	case key.Matches(msg, k.Clear):
		return []Event{{Key: KeyClear}}
	case key.Matches(msg, k.Confirm):
		return []Event{{Key: KeyConfirm}}
	case key.Matches(msg, k.Abort):
		return []Event{{Key: KeyAbort}}
	case key.Matches(msg, k.Quit):
		return []Event{{Key: KeyQuit}}
	}

	if msg.Type == tea.KeyRunes && !msg.Alt {
		events := make([]Event, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			events = append(events, Event{Key: KeyRune, Rune: r})
		}
		return events
	}
	return []Event{{Key: KeyIgnored}}
}

// Model hosts a State in a bubbletea program.
type Model struct {
	state *State
	keys  keyMap
	help  help.Model
	width int
}

// NewModel returns a model over a fresh State.
func NewModel(items []Item, opts Options) Model {
	st := New(items, opts)
	return Model{
		state: st,
		keys:  newKeyMap(st.opts),
		help:  help.New(),
		width: defaultWidth,
	}
}

// State returns the engine state.
func (m Model) State() *State { return m.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		for _, ev := range m.keys.Decode(msg) {
			if m.state.Apply(ev) != Browsing {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.state.Status() != Browsing {
		return ""
	}
	return Render(m.state, m.width) + "\n" + m.help.FullHelpView(m.keys.FullHelp()) + "\n"
}

// Result is the outcome of a finished selection.
type Result struct {
	Status Status
	// Indices are original item indices; empty unless Status is Confirmed.
	Indices []int
}

// IO carries the terminal the program runs on. Zero fields default to the
// process stdin and stdout.
type IO struct {
	In  io.Reader
	Out io.Writer
}

// Run shows the list until the user confirms, aborts or quits. The alternate
// screen is used only when the output is a terminal.
func Run(ctx context.Context, items []Item, opts Options, tio IO) (Result, error) {
	if tio.In == nil {
		tio.In = os.Stdin
	}
	if tio.Out == nil {
		tio.Out = os.Stdout
	}

	popts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(tio.In),
		tea.WithOutput(tio.Out),
	}
	if logging.IsTTY(tio.Out) {
		popts = append(popts, tea.WithAltScreen())
	}

	logger := logging.FromContext(ctx)
	logger.Debug("selector started", "title", opts.Title, "items", len(items), "multi", opts.Multi)

	final, err := tea.NewProgram(NewModel(items, opts), popts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, errors.Wrap(err, "running selector")
	}

	m, ok := final.(Model)
	if !ok {
		return Result{}, errors.Newf("selector: unexpected model %T", final)
	}
	res := Result{Status: m.state.Status(), Indices: m.state.Result()}
	if res.Status == Browsing {
		// The program ended without a decision, e.g. input closed.
		res.Status = Aborted
	}
	logger.Debug("selector finished", "status", res.Status.String(), "chosen", len(res.Indices))
	return res, nil
}
