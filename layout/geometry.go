// Package layout computes the complete multi-page plan for an invoice before
// anything is drawn.
//
// The plan fixes every section origin, the item range of every page and
// the wrapped text of every variable-height section. Page content starts at
// ContentStart on every page, so a table continued on page 2 begins at the
// same height as the info grid on page 1.
package layout

import (
	"fmt"
	"strings"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/table"
)

// Page geometry in millimetres.
const (
	Margin            = 10.0
	HeaderRule        = 30.0 // y of the rule under the header band
	ContentStart      = 35.0
	Spacer            = 8.0
	BottomMargin      = 15.0
	RowHeight         = 10.0
	TableHeaderHeight = 8.0
)

// Section metrics in millimetres.
const (
	TitleBand     = 5.0 // section top to title baseline
	TitleGap      = 6.0 // title baseline to first body baseline
	LineHeight    = 4.0
	BottomPadding = 4.0
	TextInset     = 2.1 // left and right text inset inside boxes
	CellInset     = 1.3 // text inset inside table cells
	RowBaseline   = 6.0 // row top to first baseline
	HeadBaseline  = 5.0 // table header top to baseline

	MinGridHeight   = 35.0
	MinNotesHeight  = 20.0
	MinFooterHeight = 20.0
	GrandTotalGap   = 5.0
	PaymentShare    = 0.66
)

// Header geometry.
const (
	LogoMaxW = 35.0
	LogoMaxH = 15.0
	LogoY    = 10.0
)

// Payment code boxes.
const (
	QRSize      = 22.0
	PDF417Width = 40.0
	PDF417Ht    = 14.0
)

// DescriptionPolicy controls how long item descriptions are handled.
type DescriptionPolicy int

const (
	// Truncate draws the first wrapped line of a description in a fixed
	// height row.
	Truncate DescriptionPolicy = iota
	// Wrap grows rows to fit every wrapped line.
	Wrap
)

func (p DescriptionPolicy) String() string {
	if p == Wrap {
		return "wrap"
	}
	return "truncate"
}

// ParseDescriptionPolicy parses "truncate" or "wrap".
func ParseDescriptionPolicy(s string) (DescriptionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "truncate":
		return Truncate, nil
	case "wrap":
		return Wrap, nil
	}
	return Truncate, fmt.Errorf("layout: unknown description policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p DescriptionPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *DescriptionPolicy) UnmarshalText(b []byte) error {
	v, err := ParseDescriptionPolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Typography is the set of fonts used on a page. Every size here is shared
// by the planner, which measures with it, and the renderer, which draws
// with it.
type Typography struct {
	Family draw.Family
}

func (t Typography) font(bold bool, size float64) draw.Font {
	return draw.Font{Family: t.Family, Bold: bold, Size: size}
}

func (t Typography) SectionTitle() draw.Font { return t.font(true, 7) }
func (t Typography) Body() draw.Font         { return t.font(false, 8) }
func (t Typography) BodyBold() draw.Font     { return t.font(true, 8) }
func (t Typography) GrandTotal() draw.Font   { return t.font(true, 10) }
func (t Typography) Heading() draw.Font      { return t.font(true, 16) }
func (t Typography) Number() draw.Font       { return t.font(true, 11) }
func (t Typography) Subtitle() draw.Font     { return t.font(true, 9) }
func (t Typography) Badge() draw.Font        { return t.font(true, 7) }
func (t Typography) Banner() draw.Font       { return t.font(false, 6) }
func (t Typography) BannerNumber() draw.Font { return t.font(true, 8) }

// Column keys of the line-item table.
const (
	ColType        = "type"
	ColDescription = "description"
	ColQuantity    = "qty"
	ColRate        = "rate"
	ColAmount      = "amount"
)

// Column is a resolved line-item table column.
type Column struct {
	Key   string
	Def   table.ColumnDef
	X     float64
	Width float64
}

// itemColumns returns the line-item columns. The type column is shown for
// the whole table when any item has a category.
func itemColumns(x, width float64, hasTypes bool) []Column {
	var defs []table.ColumnDef
	var keys []string
	if hasTypes {
		keys = []string{ColType, ColDescription, ColQuantity, ColRate, ColAmount}
		defs = []table.ColumnDef{
			{Title: "TYPE", Fraction: 25.0 / 180},
			{Title: "DESCRIPTION"},
			{Title: "QTY/HRS", Fraction: 20.0 / 180, Align: "C"},
			{Title: "RATE", Fraction: 30.0 / 180, Align: "R"},
			{Title: "AMOUNT", Fraction: 40.0 / 180, Align: "R"},
		}
	} else {
		keys = []string{ColDescription, ColQuantity, ColRate, ColAmount}
		defs = []table.ColumnDef{
			{Title: "DESCRIPTION", Fraction: 0.5},
			{Title: "QTY/HRS", Fraction: 0.15, Align: "C"},
			{Title: "RATE", Fraction: 0.15, Align: "R"},
			{Title: "AMOUNT", Fraction: 0.2, Align: "R"},
		}
	}
	widths := table.Widths(defs, width)
	cols := make([]Column, len(defs))
	for i := range defs {
		cols[i] = Column{Key: keys[i], Def: defs[i], X: x, Width: widths[i]}
		x += widths[i]
	}
	return cols
}
