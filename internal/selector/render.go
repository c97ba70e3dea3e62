package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	markerCursor   = "▶ "
	markerNone     = "  "
	boxChecked     = "☑ "
	boxUnchecked   = "☐ "
	publisherWidth = 20
	defaultWidth   = 80
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	searchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	chosenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	starStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	publisherStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Render draws s as text, width columns wide (0 means 80). It has no side
// effects and depends only on s and its items.
func Render(s *State, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	opts := s.opts

	var b strings.Builder
	if opts.Title != "" {
		b.WriteString(titleStyle.Render(opts.Title))
		b.WriteString("\n")
	}
	if opts.Searchable {
		b.WriteString(searchStyle.Render("Search: " + s.Query() + "█"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(s.view) == 0 {
		msg := "No items"
		if s.Query() != "" {
			msg = fmt.Sprintf("No matches for %q", s.Query())
		}
		b.WriteString(dimStyle.Render("  " + msg))
		b.WriteString("\n")
	}

	start, end := s.pageBounds()
	for vi := start; vi < end; vi++ {
		idx := s.view[vi]
		b.WriteString(renderRow(s, idx, vi == s.cursor, width))
	}

	if status := StatusLine(s); status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(status))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(s *State, idx int, atCursor bool, width int) string {
	it := s.items[idx]

	marker := markerNone
	if atCursor {
		marker = markerCursor
	}
	box := ""
	if s.opts.Multi {
		box = boxUnchecked
		if s.chosen[idx] {
			box = boxChecked
		}
	}

	name := it.Name
	switch {
	case atCursor:
		name = cursorStyle.Render(name)
	case s.chosen[idx]:
		name = chosenStyle.Render(name)
	}

	line := marker + box + name
	if it.Note != "" {
		line += " " + dimStyle.Render(it.Note)
	}
	if it.Popularity > 0 {
		line += "  " + starStyle.Render("☆ "+FormatStars(it.Popularity))
	}
	if it.Publisher != "" {
		line += "  " + publisherStyle.Render("By: "+runewidth.Truncate(it.Publisher, publisherWidth, "..."))
	}
	line += "\n"

	if it.Description != "" {
		indent := strings.Repeat(" ", runewidth.StringWidth(marker+box))
		avail := width - runewidth.StringWidth(indent)
		if avail > 10 {
			line += indent + dimStyle.Render(runewidth.Truncate(it.Description, avail, "...")) + "\n"
		}
	}
	return line
}

// StatusLine returns the status text shown under the rows: the chosen count
// for multi lists, the page window when there is more than one page and the
// filter ratio while a query narrows the list.
func StatusLine(s *State) string {
	var parts []string
	if s.opts.Multi {
		parts = append(parts, fmt.Sprintf("Selected: %d %s(s)", len(s.chosen), s.opts.Noun))
	}
	if pages := s.TotalPages(); pages > 1 {
		start, end := s.pageBounds()
		parts = append(parts,
			fmt.Sprintf("Page %d of %d", s.page+1, pages),
			fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(s.view)))
	}
	if s.Query() != "" && len(s.view) != len(s.items) {
		parts = append(parts, fmt.Sprintf("Filtered: %d/%d", len(s.view), len(s.items)))
	}
	return strings.Join(parts, " | ")
}

// FormatStars abbreviates a popularity count: 950, 1.2k, 3.4M.
func FormatStars(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "k"
	default:
		return strconv.Itoa(n)
	}
}
