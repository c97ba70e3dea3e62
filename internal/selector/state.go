// Package selector implements the keyboard-driven list used to pick an
// agent, pick catalog servers and pick configured servers to remove.
//
// [State] is the whole engine: a cursor, a page, a search query and a chosen
// set over a filtered view of the items. It is mutated only through
// [State.Apply] with a closed set of [Key] events, so it can be driven
// directly in tests. [Render] draws a state, and [Run] hosts it in a
// bubbletea program.
package selector

import (
	"slices"
	"strings"
	"unicode"
)

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 10

// Item is one selectable row.
type Item struct {
	Name        string
	Publisher   string
	Description string
	Popularity  int
	// Note is shown dimmed after the name, e.g. "(configured)".
	Note string
}

// Key is a decoded key press. Anything the engine does not understand is
// KeyIgnored.
type Key int

const (
	KeyIgnored Key = iota
	KeyUp
	KeyDown
	KeyPrevPage
	KeyNextPage
	KeyToggle
	KeyRune
	KeyBackspace
	KeyClear
	KeySelectAll
	KeySelectNone
	KeyConfirm
	KeyAbort
	KeyQuit
)

var keyNames = map[Key]string{
	KeyIgnored:    "ignored",
	KeyUp:         "up",
	KeyDown:       "down",
	KeyPrevPage:   "prev-page",
	KeyNextPage:   "next-page",
	KeyToggle:     "toggle",
	KeyRune:       "rune",
	KeyBackspace:  "backspace",
	KeyClear:      "clear",
	KeySelectAll:  "select-all",
	KeySelectNone: "select-none",
	KeyConfirm:    "confirm",
	KeyAbort:      "abort",
	KeyQuit:       "quit",
}

func (k Key) String() string {
	if s, ok := keyNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is a key press with its rune for KeyRune.
type Event struct {
	Key  Key
	Rune rune
}

// Status is where the engine is in its lifecycle.
type Status int

const (
	// Browsing accepts further events.
	Browsing Status = iota
	// Confirmed ends with a (possibly empty) selection.
	Confirmed
	// Aborted ends with no selection; the caller stops the whole operation.
	Aborted
	// Quit ends with an explicit empty selection.
	Quit
)

func (s Status) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case Confirmed:
		return "confirmed"
	case Aborted:
		return "aborted"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Options configure a list.
type Options struct {
	Title    string
	PageSize int
	// Multi enables checkboxes, Space, Ctrl+A and Ctrl+N.
	Multi bool
	// Searchable routes printable keys to the query. When false, "q" quits.
	Searchable bool
	// Noun names the items in the status line, e.g. "server".
	Noun string
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Noun == "" {
		o.Noun = "item"
	}
	return o
}

// State is the selection engine. The zero value is not usable; call New.
type State struct {
	items []Item
	opts  Options

	cursor int
	page   int
	query  []rune
	chosen map[int]bool

	// view holds the original indices matching query, in item order;
	// pos is its inverse.
	view []int
	pos  map[int]int

	status Status
}

// New returns a browsing state over items. items must not be modified while
// the state is in use.
func New(items []Item, opts Options) *State {
	s := &State{
		items:  items,
		opts:   opts.withDefaults(),
		chosen: make(map[int]bool),
	}
	s.rebuild()
	return s
}

// Apply performs the single mutation bound to ev and returns the resulting
// status. Events after the engine has finished are ignored.
func (s *State) Apply(ev Event) Status {
	if s.status != Browsing {
		return s.status
	}

	switch ev.Key {
	case KeyUp:
		if n := len(s.view); n > 0 {
			s.moveTo((s.cursor - 1 + n) % n)
		}
	case KeyDown:
		if n := len(s.view); n > 0 {
			s.moveTo((s.cursor + 1) % n)
		}
	case KeyPrevPage:
		if s.page > 0 {
			s.page--
			s.cursor = s.page * s.opts.PageSize
		}
	case KeyNextPage:
		if s.page < s.TotalPages()-1 {
			s.page++
			s.cursor = s.page * s.opts.PageSize
		}
	case KeyToggle:
		if s.opts.Multi && len(s.view) > 0 {
			idx := s.view[s.cursor]
			if s.chosen[idx] {
				delete(s.chosen, idx)
			} else {
				s.chosen[idx] = true
			}
		}
	case KeyRune:
		if !s.opts.Searchable {
			if ev.Rune == 'q' {
				s.status = Quit
			}
			break
		}
		if unicode.IsPrint(ev.Rune) {
			s.query = append(s.query, ev.Rune)
			s.rebuild()
		}
	case KeyBackspace:
		if len(s.query) > 0 {
			s.query = s.query[:len(s.query)-1]
			s.rebuild()
		}
	case KeyClear:
		if len(s.query) > 0 {
			s.query = s.query[:0]
			s.rebuild()
		}
	case KeySelectAll:
		if s.opts.Multi {
			for _, idx := range s.view {
				s.chosen[idx] = true
			}
		}
	case KeySelectNone:
		if s.opts.Multi {
			clear(s.chosen)
		}
	case KeyConfirm:
		s.status = Confirmed
	case KeyAbort:
		s.status = Aborted
	case KeyQuit:
		s.status = Quit
	}
	return s.status
}

func (s *State) moveTo(cursor int) {
	s.cursor = cursor
	s.page = cursor / s.opts.PageSize
}

// rebuild recomputes the view for the current query and resets the cursor.
func (s *State) rebuild() {
	q := strings.ToLower(string(s.query))
	s.view = s.view[:0]
	s.pos = make(map[int]int, len(s.items))
	for i, it := range s.items {
		if q == "" ||
			strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Publisher), q) {
			s.pos[i] = len(s.view)
			s.view = append(s.view, i)
		}
	}
	s.cursor = 0
	s.page = 0
}

// Status returns the lifecycle state.
func (s *State) Status() Status { return s.status }

// Cursor returns the cursor position within the view.
func (s *State) Cursor() int { return s.cursor }

// Page returns the zero-based page.
func (s *State) Page() int { return s.page }

// TotalPages returns the page count of the view; at least 1.
func (s *State) TotalPages() int {
	n := (len(s.view) + s.opts.PageSize - 1) / s.opts.PageSize
	return max(n, 1)
}

// Query returns the search text.
func (s *State) Query() string { return string(s.query) }

// View returns the original indices visible under the current query.
func (s *State) View() []int { return slices.Clone(s.view) }

// Options returns the effective options.
func (s *State) Options() Options { return s.opts }

// Current returns the original index under the cursor, or -1 on an empty view.
func (s *State) Current() int {
	if len(s.view) == 0 {
		return -1
	}
	return s.view[s.cursor]
}

// IsChosen reports whether the original index idx is in the chosen set.
func (s *State) IsChosen(idx int) bool { return s.chosen[idx] }

// ChosenCount returns the size of the chosen set.
func (s *State) ChosenCount() int { return len(s.chosen) }

// Visible reports whether the original index idx passes the current filter.
func (s *State) Visible(idx int) bool {
	_, ok := s.pos[idx]
	return ok
}

// Result returns the selection for a Confirmed state: the chosen set in
// ascending original order, or the row under the cursor when nothing was
// chosen. Every other status yields nil.
func (s *State) Result() []int {
	if s.status != Confirmed {
		return nil
	}
	if len(s.chosen) > 0 {
		out := make([]int, 0, len(s.chosen))
		for idx := range s.chosen {
			out = append(out, idx)
		}
		slices.Sort(out)
		return out
	}
	if idx := s.Current(); idx >= 0 {
		return []int{idx}
	}
	return []int{}
}

// pageBounds returns the view range [start, end) shown on the current page.
func (s *State) pageBounds() (start, end int) {
	start = s.page * s.opts.PageSize
	end = min(start+s.opts.PageSize, len(s.view))
	return start, end
}
