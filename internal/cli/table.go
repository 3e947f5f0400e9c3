package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// columnGap is the number of spaces between columns.
const columnGap = 2

// Table renders rows as borderless, aligned columns.
type Table struct {
	headers   []string
	rows      [][]string
	maxWidths map[int]int
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers, maxWidths: make(map[int]int)}
}

// SetColumnMaxWidth wraps a column's text at maxWidth.
func (t *Table) SetColumnMaxWidth(col, maxWidth int) {
	t.maxWidths[col] = maxWidth
}

// AddRow adds a row, padded or truncated to the number of headers.
func (t *Table) AddRow(row []string) {
	fixed := make([]string, len(t.headers))
	copy(fixed, row)
	t.rows = append(t.rows, fixed)
}

// Render returns the table followed by a newline, or "" without headers.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	last := len(t.headers) - 1
	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(t.headers...).
		Rows(t.rows...).
		StyleFunc(func(_, col int) lipgloss.Style {
			style := lipgloss.NewStyle()
			if col < last {
				style = style.PaddingRight(columnGap)
			}
			if w := t.maxWidths[col]; w > 0 {
				style = style.Width(w + style.GetHorizontalPadding())
			}
			return style
		})
	return tbl.Render() + "\n"
}
