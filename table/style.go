// Package table lays out bordered, column-aligned tables as draw commands.
//
// Column widths mix fixed, proportional and auto-fill columns. Cell styles
// merge from table to header or alternate row, then row, then cell, so a
// single palette can theme every table on an invoice page.
package table

import (
	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/palette"
)

// Padding defines spacing inside a cell. Top is the distance from the top
// edge of the row to the first text baseline.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding creates a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// BorderStyle defines the appearance of the outer frame and inner rules.
type BorderStyle struct {
	Width  float64
	Color  palette.Color
	Dashed bool // inner row rules only
}

// CellStyle defines the visual appearance of a cell. Nil fields inherit.
type CellStyle struct {
	FillColor *palette.Color
	TextColor *palette.Color
	Font      *draw.Font
	Align     string // "L", "C", "R"
}

// AlternateStyle defines alternating row styles.
type AlternateStyle struct {
	Even CellStyle
	Odd  CellStyle
}

// TableStyle defines the overall appearance of a table.
type TableStyle struct {
	Border        *BorderStyle
	AlternateRows *AlternateStyle
	HeaderStyle   *CellStyle
	CellPadding   Padding
	CellFont      *draw.Font
	TextColor     palette.Color
	LineHeight    float64 // baseline step for multi-line cells

	// HeaderBaseline overrides CellPadding.Top for the header row when set.
	HeaderBaseline float64
}

// Color returns a pointer to c for use in CellStyle literals.
func Color(c palette.Color) *palette.Color { return &c }

// Font returns a pointer to f for use in CellStyle literals.
func Font(f draw.Font) *draw.Font { return &f }

// mergeStyle copies non-nil fields from src to dst.
func mergeStyle(dst, src *CellStyle) {
	if src.FillColor != nil {
		dst.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		dst.TextColor = src.TextColor
	}
	if src.Font != nil {
		dst.Font = src.Font
	}
	if src.Align != "" {
		dst.Align = src.Align
	}
}

func parseAlign(s string) draw.Align {
	switch s {
	case "C":
		return draw.Center
	case "R":
		return draw.Right
	}
	return draw.Left
}
