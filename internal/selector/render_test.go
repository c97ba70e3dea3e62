package selector

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestFormatStars(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0k"},
		{1234, "1.2k"},
		{45_600, "45.6k"},
		{2_500_000, "2.5M"},
	}
	for _, tt := range tests {
		if got := FormatStars(tt.n); got != tt.want {
			t.Errorf("FormatStars(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRender_Rows(t *testing.T) {
	items := []Item{
		{Name: "GitHub", Publisher: "github", Popularity: 1234, Description: "GitHub's official MCP server"},
		{Name: "Fetch", Publisher: "a-very-long-publisher-name-indeed", Note: "(configured)"},
	}
	s := New(items, Options{Title: "Choose MCP servers to install:", Multi: true, Searchable: true, Noun: "server"})
	s.Apply(Event{Key: KeyToggle})

	out := Render(s, 80)
	for _, want := range []string{
		"Choose MCP servers to install:",
		"Search: █",
		"▶ ☑ GitHub",
		"☆ 1.2k",
		"By: github",
		"GitHub's official MCP server",
		"  ☐ Fetch",
		"(configured)",
		"By: a-very-long-publi...",
		"Selected: 1 server(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Page ") {
		t.Errorf("single page list should not show a page indicator\n%s", out)
	}
}

func TestRender_SingleSelect(t *testing.T) {
	s := New([]Item{{Name: "Claude Code"}, {Name: "Cursor"}}, Options{Title: "Choose your AI assistant:"})
	s.Apply(Event{Key: KeyDown})

	out := Render(s, 80)
	if !strings.Contains(out, "▶ Cursor") || !strings.Contains(out, "  Claude Code") {
		t.Errorf("unexpected rows\n%s", out)
	}
	if strings.Contains(out, "☐") || strings.Contains(out, "Selected:") || strings.Contains(out, "Search:") {
		t.Errorf("single-select list rendered multi-select chrome\n%s", out)
	}
}

func TestRender_Pagination(t *testing.T) {
	s := New(manyItems(25), Options{Multi: true, Noun: "server"})
	s.Apply(Event{Key: KeyNextPage})

	out := Render(s, 80)
	if !strings.Contains(out, "server-10") || strings.Contains(out, "server-09") || strings.Contains(out, "server-20") {
		t.Errorf("page 2 should show rows 10-19\n%s", out)
	}
	if got, want := StatusLine(s), "Selected: 0 server(s) | Page 2 of 3 | Showing 11-20 of 25"; got != want {
		t.Errorf("StatusLine() = %q, want %q", got, want)
	}
}

func TestStatusLine_Filtered(t *testing.T) {
	s := New(testItems(), Options{Multi: true, Searchable: true, Noun: "server"})
	typeQuery(s, "micro")
	if got, want := StatusLine(s), "Selected: 0 server(s) | Filtered: 2/5"; got != want {
		t.Errorf("StatusLine() = %q, want %q", got, want)
	}
}

func TestRender_NoMatches(t *testing.T) {
	s := New(testItems(), Options{Searchable: true})
	typeQuery(s, "zzz")
	if out := Render(s, 80); !strings.Contains(out, `No matches for "zzz"`) {
		t.Errorf("missing empty-view message\n%s", out)
	}
}

func TestRender_TruncatesDescription(t *testing.T) {
	s := New([]Item{{Name: "x", Description: strings.Repeat("long ", 40)}}, Options{})
	for _, line := range strings.Split(Render(s, 40), "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line %q is %d columns wide, want <= 40", line, w)
		}
	}
}
