package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22D3EE"))
	bannerTag   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#A3A3A3"))
	bannerBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#22D3EE")).
			Padding(0, 2)

	panelBox = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#EAB308")).
			Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EAB308"))
	panelKey   = lipgloss.NewStyle().Bold(true)
)

// Tagline is printed under the banner.
const Tagline = "Setup high-quality MCP servers faster"

// Banner renders the boxed program banner.
func Banner() string {
	return bannerBox.Render(bannerTitle.Render("MCP CLI") + "\n" + bannerTag.Render(Tagline))
}

// Field is one labelled line of a Panel.
type Field struct {
	Label string
	Value string
}

// Panel renders a titled box of label/value lines.
func Panel(title string, fields ...Field) string {
	var b strings.Builder
	b.WriteString(panelTitle.Render(title))
	for _, f := range fields {
		b.WriteString("\n")
		b.WriteString(panelKey.Render(f.Label + ":"))
		b.WriteString(" ")
		b.WriteString(f.Value)
	}
	return panelBox.Render(b.String())
}
