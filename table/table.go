package table

import (
	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/palette"
)

// ColumnDef defines the properties of a table column.
type ColumnDef struct {
	Title    string
	Width    float64 // Fixed width. 0 means proportional or auto.
	Fraction float64 // Share of the table width, used when Width is 0.
	MinWidth float64 // Minimum width for auto columns.
	MaxWidth float64 // Maximum width for auto columns. 0 means unlimited.
	Align    string  // Default alignment for this column ("L", "C", "R").
}

// Widths computes final column widths for a table totalWidth wide. Fixed
// columns keep their width, proportional columns take their fraction of
// the total and auto columns share what is left.
func Widths(cols []ColumnDef, totalWidth float64) []float64 {
	widths := make([]float64, len(cols))
	used := 0.0
	autoCount := 0

	for i, col := range cols {
		switch {
		case col.Width > 0:
			widths[i] = col.Width
		case col.Fraction > 0:
			widths[i] = totalWidth * col.Fraction
		default:
			autoCount++
			continue
		}
		used += widths[i]
	}

	// Distribute remaining space to auto columns
	if autoCount > 0 {
		remaining := totalWidth - used
		if remaining < 0 {
			remaining = 0
		}
		autoWidth := remaining / float64(autoCount)
		for i, col := range cols {
			if col.Width > 0 || col.Fraction > 0 {
				continue
			}
			w := autoWidth
			if col.MinWidth > 0 && w < col.MinWidth {
				w = col.MinWidth
			}
			if col.MaxWidth > 0 && w > col.MaxWidth {
				w = col.MaxWidth
			}
			widths[i] = w
		}
	}

	return widths
}

// Table builds the draw commands for one table segment.
type Table struct {
	columns []ColumnDef
	widths  []float64
	x, y    float64
	width   float64
	header  *Row
	rows    []*Row
	style   TableStyle
}

// New creates a table whose top-left corner is at (x, y).
func New(x, y, width float64, cols ...ColumnDef) *Table {
	return &Table{
		columns: cols,
		widths:  Widths(cols, width),
		x:       x,
		y:       y,
		width:   width,
		style: TableStyle{
			CellPadding: UniformPadding(1),
			LineHeight:  4,
		},
	}
}

// SetStyle sets the table-wide style.
func (t *Table) SetStyle(s TableStyle) *Table {
	t.style = s
	return t
}

// ColumnWidths returns the resolved column widths.
func (t *Table) ColumnWidths() []float64 {
	return append([]float64(nil), t.widths...)
}

// SetHeader adds a header row of the given height carrying the column
// titles.
func (t *Table) SetHeader(height float64) *Row {
	r := &Row{isHeader: true, height: height}
	for _, c := range t.columns {
		r.AddCell(c.Title)
	}
	t.header = r
	return r
}

// AddRow adds a new data row of the given height.
func (t *Table) AddRow(height float64) *Row {
	r := &Row{height: height}
	t.rows = append(t.rows, r)
	return r
}

// Height returns the total height of the header and all rows.
func (t *Table) Height() float64 {
	h := 0.0
	if t.header != nil {
		h += t.header.height
	}
	for _, r := range t.rows {
		h += r.height
	}
	return h
}

// Render appends the table to p and returns the y coordinate just below it.
func (t *Table) Render(p *draw.Page) float64 {
	y := t.y
	if t.header != nil {
		t.renderRow(p, t.header, y, -1)
		y += t.header.height
	}
	for i, r := range t.rows {
		t.renderRow(p, r, y, i)
		y += r.height
	}
	t.renderBorders(p)
	return y
}

// renderBorders draws the frame, the column rules, the header rule and the
// rules between body rows.
func (t *Table) renderBorders(p *draw.Page) {
	b := t.style.Border
	if b == nil {
		return
	}
	h := t.Height()
	p.Add(draw.StrokeRect{X: t.x, Y: t.y, W: t.width, H: h, Color: b.Color, LineWidth: b.Width})

	x := t.x
	for i := 0; i < len(t.widths)-1; i++ {
		x += t.widths[i]
		p.Add(draw.Line{X1: x, Y1: t.y, X2: x, Y2: t.y + h, Color: b.Color, LineWidth: b.Width})
	}

	y := t.y
	if t.header != nil {
		y += t.header.height
		if len(t.rows) > 0 {
			p.Add(draw.Line{X1: t.x, Y1: y, X2: t.x + t.width, Y2: y, Color: b.Color, LineWidth: b.Width})
		}
	}
	for i, r := range t.rows {
		y += r.height
		if i < len(t.rows)-1 {
			p.Add(draw.Line{X1: t.x, Y1: y, X2: t.x + t.width, Y2: y, Color: b.Color, LineWidth: b.Width, Dashed: b.Dashed})
		}
	}
}

func (t *Table) renderRow(p *draw.Page, r *Row, y float64, bodyIdx int) {
	pad := t.style.CellPadding
	if r.isHeader && t.style.HeaderBaseline > 0 {
		pad.Top = t.style.HeaderBaseline
	}
	x := t.x

	// A single fill spans the row when every cell agrees, which keeps
	// backends from drawing hairline seams between cells.
	shared := t.rowFill(r, bodyIdx)
	if shared != nil {
		p.Add(draw.FillRect{X: t.x, Y: y, W: t.width, H: r.height, Color: *shared})
	}

	for i, cell := range r.cells {
		if i >= len(t.widths) {
			break
		}
		w := t.widths[i]
		style := t.resolveCellStyle(cell, r, bodyIdx)

		if style.FillColor != nil && shared == nil {
			p.Add(draw.FillRect{X: x, Y: y, W: w, H: r.height, Color: *style.FillColor})
		}

		align := "L"
		if style.Align != "" {
			align = style.Align
		} else if t.columns[i].Align != "" {
			align = t.columns[i].Align
		}
		a := parseAlign(align)

		tx := x + pad.Left
		switch a {
		case draw.Center:
			tx = x + w/2
		case draw.Right:
			tx = x + w - pad.Right
		}

		font := t.baseFont()
		if style.Font != nil {
			font = *style.Font
		}
		color := t.style.TextColor
		if style.TextColor != nil {
			color = *style.TextColor
		}
		for j, line := range cell.lines {
			if line == "" {
				continue
			}
			p.Add(draw.Text{
				Content: line,
				X:       tx,
				Y:       y + pad.Top + float64(j)*t.style.LineHeight,
				Align:   a,
				Font:    font,
				Color:   color,
			})
		}
		x += w
	}
}

// rowFill returns the fill shared by the whole row, if any.
func (t *Table) rowFill(r *Row, bodyIdx int) *palette.Color {
	var rowStyle CellStyle
	t.applyRowStyles(&rowStyle, r, bodyIdx)
	if rowStyle.FillColor == nil {
		return nil
	}
	for _, c := range r.cells {
		if c.style != nil && c.style.FillColor != nil && *c.style.FillColor != *rowStyle.FillColor {
			return nil
		}
	}
	return rowStyle.FillColor
}

func (t *Table) baseFont() draw.Font {
	if t.style.CellFont != nil {
		return *t.style.CellFont
	}
	return draw.Font{Size: 8}
}

func (t *Table) applyRowStyles(result *CellStyle, row *Row, bodyIdx int) {
	// Header style
	if row.isHeader && t.style.HeaderStyle != nil {
		mergeStyle(result, t.style.HeaderStyle)
	}

	// Alternate row colors (only for body rows)
	if !row.isHeader && t.style.AlternateRows != nil && bodyIdx >= 0 {
		if bodyIdx%2 == 0 {
			mergeStyle(result, &t.style.AlternateRows.Even)
		} else {
			mergeStyle(result, &t.style.AlternateRows.Odd)
		}
	}

	// Row-level style
	if row.style != nil {
		mergeStyle(result, row.style)
	}
}

// resolveCellStyle determines the effective style for a cell by merging
// table, alternate row, header, row, and cell-level styles.
func (t *Table) resolveCellStyle(cell *Cell, row *Row, bodyIdx int) CellStyle {
	var result CellStyle

	// Table-level font
	if t.style.CellFont != nil {
		result.Font = t.style.CellFont
	}

	t.applyRowStyles(&result, row, bodyIdx)

	// Cell-level style (highest priority)
	if cell.style != nil {
		mergeStyle(&result, cell.style)
	}

	return result
}
