package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// MarkdownTable renders headers and records as an aligned markdown table.
// Pipes inside cells are escaped.
func MarkdownTable(headers []string, records [][]string) string {
	rows := make([]string, 0, len(records)+2)
	rows = append(rows, markdownRow(headers))

	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}

	rows = append(rows, markdownRow(sep))

	for _, rec := range records {
		rows = append(rows, markdownRow(rec))
	}

	return strings.Join(processTable(rows), "\n")
}

func markdownRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}

	return "| " + strings.Join(escaped, " | ") + " |"
}

// TextTable renders headers and records as plain aligned columns for the
// console, with a dashed rule under the header.
func TextTable(headers []string, records [][]string) string {
	widths := make([]int, len(headers))

	measure := func(cells []string) {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}

			if w := runewidth.StringWidth(c); w > widths[i] {
				widths[i] = w
			}
		}
	}

	measure(headers)

	for _, rec := range records {
		measure(rec)
	}

	var sb strings.Builder

	writeLine := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}

			parts[i] = runewidth.FillRight(c, widths[i])
		}

		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteString("\n")
	}

	writeLine(headers)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}

	writeLine(rule)

	for _, rec := range records {
		writeLine(rec)
	}

	return sb.String()
}
