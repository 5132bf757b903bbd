package report

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws a rounded table for CLI output. Columns listed in
// rightAligned are right-justified; when none are given, columns whose cells
// all parse as numbers (counts, scores, BPM) right-align automatically.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	right := make(map[int]bool, columns)
	if len(rightAligned) == 0 {
		for col := 0; col < columns; col++ {
			right[col] = numericColumn(rows, col)
		}
	}
	for _, col := range rightAligned {
		right[col] = true
	}

	header := make(table.Row, columns)
	configs := make([]table.ColumnConfig, columns)
	for i := range header {
		header[i] = headers[i]
		align := text.AlignLeft
		if right[i] {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}

// numericColumn reports whether the column holds at least one cell and every
// populated cell parses as a number.
func numericColumn(rows [][]string, col int) bool {
	populated := false
	for _, row := range rows {
		if col >= len(row) || row[col] == "" {
			continue
		}
		if _, err := strconv.ParseFloat(row[col], 64); err != nil {
			return false
		}
		populated = true
	}
	return populated
}
