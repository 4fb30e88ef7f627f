package table

import (
	"fmt"

	"github.com/lvillar/invoicepdf/draw"
)

// Cell is one cell of a row. A cell holds one or more pre-wrapped lines.
type Cell struct {
	lines []string
	style *CellStyle
}

// Lines returns the text lines of the cell.
func (c *Cell) Lines() []string { return c.lines }

// SetStyle sets the style for this cell, overriding table/row defaults.
func (c *Cell) SetStyle(s CellStyle) *Cell {
	c.style = &s
	return c
}

// SetAlign sets the horizontal alignment for this cell.
func (c *Cell) SetAlign(align string) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.Align = align
	return c
}

// SetFont sets the font for this cell.
func (c *Cell) SetFont(f draw.Font) *Cell {
	if c.style == nil {
		c.style = &CellStyle{}
	}
	c.style.Font = &f
	return c
}

// Row is a single row in a table.
type Row struct {
	cells    []*Cell
	style    *CellStyle
	isHeader bool
	height   float64
}

// AddCell adds a single-line text cell and returns it for chaining.
func (r *Row) AddCell(text string) *Cell {
	return r.AddLines(text)
}

// AddCellf adds a formatted text cell to the row.
func (r *Row) AddCellf(format string, args ...any) *Cell {
	return r.AddCell(fmt.Sprintf(format, args...))
}

// AddLines adds a cell holding several lines, drawn one LineHeight apart.
func (r *Row) AddLines(lines ...string) *Cell {
	c := &Cell{lines: lines}
	r.cells = append(r.cells, c)
	return c
}

// SetStyle sets the style for all cells in this row.
func (r *Row) SetStyle(s CellStyle) *Row {
	r.style = &s
	return r
}

// Height returns the row height.
func (r *Row) Height() float64 { return r.height }
