package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// TableOptions configures table behavior
type TableOptions struct {
	NoColor bool
}

// Table writes rows as left-aligned columns under a header and a rule line.
// Cells beyond the header count are dropped.
type Table struct {
	w       io.Writer
	headers []string
	rows    [][]string
	header  *color.Color
	rule    *color.Color
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, headers []string, opts *TableOptions) *Table {
	t := &Table{
		w:       w,
		headers: headers,
		header:  color.New(color.Bold, color.FgCyan),
		rule:    color.New(color.FgHiBlack),
	}
	if opts != nil && opts.NoColor {
		t.header.DisableColor()
		t.rule.DisableColor()
	}
	return t
}

// AddRow appends a row of cells
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render writes the table. Nothing is written without headers.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := t.columnWidths()

	rules := make([]string, len(widths))
	for i, width := range widths {
		rules[i] = strings.Repeat("─", width)
	}

	t.header.Fprintln(t.w, joinCells(t.headers, widths))
	t.rule.Fprintln(t.w, strings.Join(rules, "  "))
	for _, row := range t.rows {
		fmt.Fprintln(t.w, joinCells(row, widths))
	}
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}
	return widths
}

// joinCells pads each cell to its column width and trims the trailing padding
func joinCells(cells []string, widths []int) string {
	padded := make([]string, 0, len(widths))
	for i := 0; i < len(cells) && i < len(widths); i++ {
		padded = append(padded, padRight(cells[i], widths[i]))
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// KeyValueTable writes "key: value" lines with the values aligned
type KeyValueTable struct {
	w    io.Writer
	keys []string
	vals []string
	key  *color.Color
}

// NewKeyValueTable creates a key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	t := &KeyValueTable{w: w, key: color.New(color.FgCyan)}
	if noColor {
		t.key.DisableColor()
	}
	return t
}

// AddRow appends a key and its value
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.vals = append(t.vals, value)
}

// Render writes the rows
func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		width = max(width, len(k)+1)
	}
	for i, k := range t.keys {
		t.key.Fprint(t.w, padRight(k+":", width))
		fmt.Fprintf(t.w, " %s\n", t.vals[i])
	}
}

// Header writes a bold title underlined to its own length
func Header(w io.Writer, title string, noColor bool) {
	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if noColor {
		bold.DisableColor()
		gray.DisableColor()
	}
	bold.Fprintln(w, title)
	gray.Fprintln(w, strings.Repeat("─", len(title)))
}
