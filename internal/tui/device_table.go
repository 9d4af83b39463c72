package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rshade/sensibo/internal/devices"
)

// RenderDeviceTable renders devices as a bordered NAME/ID table in list order.
func RenderDeviceTable(list []devices.Device) string {
	rows := make([][]string, len(list))
	for i, d := range list {
		rows[i] = []string{d.Name, d.ID}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(helpStyle).
		Headers("NAME", "ID").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.Render()
}
