package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// maxColumnWidth caps a column before the table is fitted to the terminal.
const maxColumnWidth = 40

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// tableWriter prints records as aligned columns. Cells are truncated with an
// ellipsis so each line fits width; a width of 0 disables fitting.
type tableWriter struct {
	out    io.Writer
	width  int
	fields []domain.FieldSpec
	marks  func(id string) string
	rowKey string
}

func (t *tableWriter) widths(rows [][]string) []int {
	widths := make([]int, len(t.fields))
	for i, f := range t.fields {
		widths[i] = runewidth.StringWidth(f.Title())
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColumnWidth)
	}
	if t.width <= 0 {
		return widths
	}

	// shrink the widest column until the line fits
	total := func() int {
		sum := 2 * (len(widths) - 1)
		for _, w := range widths {
			sum += w
		}
		return sum
	}
	for total() > t.width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 3 {
			break
		}
		widths[widest]--
	}
	return widths
}

func (t *tableWriter) write(records []domain.Record) error {
	rows := make([][]string, len(records))
	for r, rec := range records {
		row := make([]string, len(t.fields))
		for i, f := range t.fields {
			row[i] = strings.ReplaceAll(f.Format(rec[f.Name]), "\n", " ")
		}
		rows[r] = row
	}
	widths := t.widths(rows)

	prefix := func(rec domain.Record) string {
		if t.marks == nil {
			return ""
		}
		id, _ := rec.ID(t.rowKey)
		return t.marks(id)
	}

	header := make([]string, len(t.fields))
	for i, f := range t.fields {
		header[i] = f.Title()
	}
	pad := ""
	if t.marks != nil {
		pad = "  "
	}
	if _, err := fmt.Fprintln(t.out, pad+t.line(header, widths)); err != nil {
		return err
	}
	for r, row := range rows {
		if _, err := fmt.Fprintln(t.out, prefix(records[r])+t.line(row, widths)); err != nil {
			return err
		}
	}
	return nil
}

func (t *tableWriter) line(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		cell = runewidth.Truncate(cell, widths[i], "…")
		parts[i] = runewidth.FillRight(cell, widths[i])
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
