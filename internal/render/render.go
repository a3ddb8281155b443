// Package render formats tabular executor output: DESCRIBE/SHOW TABLES and
// SELECT results all share one bordered, column-width-fitted layout.
package render

import (
	"fmt"
	"strings"
)

// Table renders headers and rows as a bordered text table: a dash border
// sized to the widest cell in each column, a header line, a second border,
// the data rows, and a closing border. An empty rows slice still prints
// the header and all three borders.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	border := buildBorder(widths)

	b.WriteString(border)
	b.WriteString("\n")
	b.WriteString(formatRow(headers, widths))
	b.WriteString("\n")
	b.WriteString(border)
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(formatRow(row, widths))
		b.WriteString("\n")
	}
	b.WriteString(border)
	return b.String()
}

func buildBorder(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

func formatRow(cells []string, widths []int) string {
	var b strings.Builder
	b.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		fmt.Fprintf(&b, " %-*s |", w, cell)
	}
	return b.String()
}
