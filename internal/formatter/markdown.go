// Package formatter aligns markdown and console tables by display width.
package formatter

import (
	"strings"

	"pollweight/pkg/metadata"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth is the shortest separator markdown renderers accept.
const minColumnWidth = 3

type alignment int

const (
	alignNone alignment = iota
	alignLeft
	alignCenter
	alignRight
)

// FormatMarkdown re-aligns every table of a markdown document. A signed
// document is re-signed with its provenance fields kept; unsigned content
// stays unsigned.
func FormatMarkdown(content string) (string, error) {
	meta, clean := metadata.Extract(content)

	var (
		out   []string
		block []string
	)

	flush := func() {
		if len(block) > 0 {
			out = append(out, processTable(block)...)
			block = nil
		}
	}

	for _, line := range strings.Split(clean, "\n") {
		if isTableRow(line) {
			block = append(block, line)
			continue
		}

		flush()

		out = append(out, line)
	}

	flush()

	formatted := strings.Join(out, "\n")
	if meta == nil {
		return formatted, nil
	}

	return metadata.Sign(formatted, meta), nil
}

func isTableRow(line string) bool {
	trimmed := strings.TrimSpace(line)

	return len(trimmed) > 1 && strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|")
}

// processTable aligns a block of table rows. Blocks without a header
// separator on their second row are returned untouched.
func processTable(rows []string) []string {
	if len(rows) < 2 {
		return rows
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = parseRow(row)
	}

	aligns, ok := parseSeparator(cells[1])
	if !ok {
		return rows
	}

	columns := 0
	for _, row := range cells {
		columns = max(columns, len(row))
	}

	widths := make([]int, columns)
	for i := range widths {
		widths[i] = minColumnWidth
	}

	for i, row := range cells {
		if i == 1 {
			continue
		}

		for j, c := range row {
			widths[j] = max(widths[j], runewidth.StringWidth(c))
		}
	}

	out := make([]string, len(cells))

	for i, row := range cells {
		parts := make([]string, columns)

		for j := range parts {
			align := alignNone
			if j < len(aligns) {
				align = aligns[j]
			}

			if i == 1 {
				parts[j] = separatorCell(widths[j], align)
				continue
			}

			c := ""
			if j < len(row) {
				c = row[j]
			}

			parts[j] = pad(c, widths[j], align)
		}

		out[i] = "| " + strings.Join(parts, " | ") + " |"
	}

	return out
}

// parseRow splits a row on unescaped pipes and trims every cell. The empty
// cells produced by the outer pipes are dropped.
func parseRow(row string) []string {
	parts := splitRow(strings.TrimSpace(row))

	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}

	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

// parseSeparator reads the alignment of each column from a header separator
// such as "| :--- | ---: | :-: |".
func parseSeparator(cells []string) ([]alignment, bool) {
	if len(cells) == 0 {
		return nil, false
	}

	aligns := make([]alignment, len(cells))

	for i, c := range cells {
		if strings.Trim(c, ":-") != "" || !strings.Contains(c, "-") {
			return nil, false
		}

		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":") && len(c) > 1

		switch {
		case left && right:
			aligns[i] = alignCenter
		case right:
			aligns[i] = alignRight
		case left:
			aligns[i] = alignLeft
		}
	}

	return aligns, true
}

func separatorCell(width int, align alignment) string {
	switch align {
	case alignLeft:
		return ":" + strings.Repeat("-", width-1)
	case alignRight:
		return strings.Repeat("-", width-1) + ":"
	case alignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}

func pad(c string, width int, align alignment) string {
	gap := width - runewidth.StringWidth(c)
	if gap <= 0 {
		return c
	}

	switch align {
	case alignRight:
		return strings.Repeat(" ", gap) + c
	case alignCenter:
		left := gap / 2

		return strings.Repeat(" ", left) + c + strings.Repeat(" ", gap-left)
	default:
		return c + strings.Repeat(" ", gap)
	}
}

// splitRow splits a table row on pipes that are not escaped with a backslash.
func splitRow(row string) []string {
	var (
		parts []string
		cell  strings.Builder
	)

	for i := 0; i < len(row); i++ {
		switch {
		case row[i] == '\\' && i+1 < len(row) && row[i+1] == '|':
			cell.WriteString(`\|`)
			i++
		case row[i] == '|':
			parts = append(parts, cell.String())
			cell.Reset()
		default:
			cell.WriteByte(row[i])
		}
	}

	return append(parts, cell.String())
}
