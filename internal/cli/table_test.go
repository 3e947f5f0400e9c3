package cli

import (
	"strings"
	"testing"
)

func renderedLines(t *Table) []string {
	return strings.Split(strings.TrimRight(t.Render(), "\n"), "\n")
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]string{"NAME", "STATUS"})
	tbl.AddRow([]string{"starship", "enabled"})
	tbl.AddRow([]string{"openrgb", "disabled"})

	lines := renderedLines(tbl)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), tbl.Render())
	}
	want := [][]string{{"NAME", "STATUS"}, {"starship", "enabled"}, {"openrgb", "disabled"}}
	for i, line := range lines {
		if got := strings.Fields(line); strings.Join(got, " ") != strings.Join(want[i], " ") {
			t.Errorf("line %d = %q, want fields %v", i, line, want[i])
		}
	}

	// Columns line up.
	col := strings.Index(lines[0], "STATUS")
	if strings.Index(lines[1], "enabled") != col || strings.Index(lines[2], "disabled") != col {
		t.Errorf("columns not aligned:\n%s", tbl.Render())
	}
}

func TestTableAddRowPads(t *testing.T) {
	tbl := NewTable([]string{"A", "B", "C"})
	tbl.AddRow([]string{"x"})
	tbl.AddRow([]string{"1", "2", "3", "4"})

	if len(tbl.rows[0]) != 3 || len(tbl.rows[1]) != 3 {
		t.Fatalf("rows = %v, want three cells each", tbl.rows)
	}
	if tbl.rows[1][2] != "3" {
		t.Errorf("rows[1] = %v", tbl.rows[1])
	}
}

func TestTableColumnMaxWidthWraps(t *testing.T) {
	tbl := NewTable([]string{"NAME", "DESCRIPTION"})
	tbl.SetColumnMaxWidth(1, 12)
	tbl.AddRow([]string{"fastfetch", "Applies the accent colour to the fastfetch logo and keys"})

	lines := renderedLines(tbl)
	if len(lines) <= 2 {
		t.Fatalf("expected the description to wrap:\n%s", tbl.Render())
	}
	if !strings.Contains(tbl.Render(), "logo") {
		t.Errorf("wrapped text lost:\n%s", tbl.Render())
	}
}

func TestTableEmpty(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}
}
