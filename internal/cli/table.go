package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22D3EE")).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1)
	tableBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("#525252"))
)

// Table renders rows under headers with a light border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeader
			}
			return tableCell
		})
	return t.Render()
}
