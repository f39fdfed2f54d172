package workout

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"movebot/internal/catalog"
)

// Render formats the set as a monospace table with one column per difficulty.
func Render(header string, set *Set) string {
	cells := make([][]string, len(catalog.Difficulties))
	rows := 0
	for col, d := range catalog.Difficulties {
		for _, it := range set.Items[d] {
			cells[col] = append(cells[col], fmt.Sprintf("%s %d %s", it.Name, it.Reps, it.Unit))
		}
		if len(cells[col]) > rows {
			rows = len(cells[col])
		}
	}

	widths := make([]int, len(catalog.Difficulties))
	for col, d := range catalog.Difficulties {
		widths[col] = utf8.RuneCountInString(d.String())
		for _, c := range cells[col] {
			if n := utf8.RuneCountInString(c); n > widths[col] {
				widths[col] = n
			}
		}
	}

	var sb strings.Builder
	if header != "" {
		sb.WriteString(header)
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")

	line := make([]string, len(catalog.Difficulties))
	for col, d := range catalog.Difficulties {
		line[col] = pad(d.String(), widths[col])
	}
	sb.WriteString(strings.TrimRight(strings.Join(line, " | "), " "))
	sb.WriteString("\n")

	for row := 0; row < rows; row++ {
		for col := range catalog.Difficulties {
			cell := ""
			if row < len(cells[col]) {
				cell = cells[col][row]
			}
			line[col] = pad(cell, widths[col])
		}
		sb.WriteString(strings.TrimRight(strings.Join(line, " | "), " "))
		sb.WriteString("\n")
	}

	sb.WriteString("```")
	return sb.String()
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
