package viz

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/foodweb/internal/sweep"
)

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00cccc")).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1)
	tableFailed = tableCell.Foreground(lipgloss.Color("#ff4444"))
)

// SweepTable renders records as a bordered table, one row per K. Failed
// rows are highlighted and carry the error text.
func SweepTable(records []sweep.Record) string {
	rows := make([][]string, len(records))
	for i, r := range records {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		rows[i] = []string{
			formatCell(r.K),
			formatCell(r.Biomass),
			formatCell(r.Persistence),
			formatCell(r.Growth),
			formatCell(r.Variability),
			status,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))).
		Headers("K", "biomass", "persistence", "growth", "cv", "status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeader
			}
			if row >= 0 && row < len(records) && records[row].Err != nil {
				return tableFailed
			}
			return tableCell
		})
	return t.String()
}

func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
