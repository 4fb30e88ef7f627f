// Package render turns a layout plan into backend-neutral draw commands.
//
// There is a single code path for every style mode. Palette flags decide
// whether boxes are filled, outlined or ruled with dashes, and the plan's
// typography selects the typeface, so outline, filled and terminal output
// cannot drift apart.
package render

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
	"github.com/lvillar/invoicepdf/table"
)

// ErrPlanMismatch is returned when the plan was computed for another invoice.
var ErrPlanMismatch = errors.New("render: plan does not match invoice")

// EmptyStateText fills the table when an invoice has no line items.
const EmptyStateText = "No items entered"

// LineWidth is the stroke width of every rule and border.
const LineWidth = 0.2

var banner = []string{
	"####  #   # #   #  ###  ####  ###  #####",
	"#     ##  # #   # #   #  #   #   # #    ",
	"####  # # #  # #  #   #  #   #   # #### ",
	"#     #  ##  # #  #   #  #   #   # #    ",
	"####  #   #   #    ###  ####  ###  #####",
}

type renderer struct {
	plan *layout.Plan
	inv  model.Invoice
	pal  palette.Palette
	typ  layout.Typography
}

// Render draws every planned page. inv is normalized before use, matching
// the normalization the planner applied.
func Render(plan *layout.Plan, inv model.Invoice, pal palette.Palette) (*draw.Document, error) {
	if plan == nil {
		return nil, errors.New("render: nil plan")
	}
	inv = model.Normalize(inv)
	if len(inv.Items) != len(plan.Rows) {
		return nil, fmt.Errorf("%w: %d items, %d planned rows", ErrPlanMismatch, len(inv.Items), len(plan.Rows))
	}

	r := &renderer{plan: plan, inv: inv, pal: pal, typ: plan.Type}
	doc := &draw.Document{
		Number: inv.Meta.InvoiceNumber(),
		Width:  plan.PageWidth,
		Height: plan.PageHeight,
		Pages:  make([]draw.Page, 0, len(plan.Pages)),
	}
	for _, pg := range plan.Pages {
		doc.Pages = append(doc.Pages, r.page(pg))
	}
	return doc, nil
}

func (r *renderer) page(pg layout.Page) draw.Page {
	p := draw.Page{Number: pg.Number}
	p.Add(draw.FillRect{W: r.plan.PageWidth, H: r.plan.PageHeight, Color: r.pal.Paper})

	if pg.Continuation {
		r.continuationHeader(&p, pg)
	} else {
		r.header(&p)
	}
	if pg.ShowGrid {
		r.grid(&p)
	}
	if pg.ShowNotes {
		r.notes(&p, pg.NotesTop)
	}
	if pg.ShowTable {
		r.items(&p, pg)
	}
	if pg.ShowFooter {
		r.footer(&p, pg.FooterTop)
	}
	return p
}

func (r *renderer) text(p *draw.Page, s string, x, y float64, a draw.Align, f draw.Font, c palette.Color) {
	if s == "" {
		return
	}
	p.Add(draw.Text{Content: s, X: x, Y: y, Align: a, Font: f, Color: c})
}

func (r *renderer) rightEdge() float64 { return r.plan.PageWidth - layout.Margin }

func (r *renderer) headerRule(p *draw.Page) {
	if r.pal.Monochrome {
		n := int(math.Floor(r.plan.ContentWidth/2)) + 2
		r.text(p, strings.Repeat("=", n), layout.Margin, layout.HeaderRule, draw.Left, r.typ.Banner(), r.pal.Ink)
		return
	}
	if r.pal.ShowBorders {
		p.Add(draw.Line{
			X1: layout.Margin, Y1: layout.HeaderRule,
			X2: r.rightEdge(), Y2: layout.HeaderRule,
			Color: r.pal.Ink, LineWidth: LineWidth,
		})
	}
}

func (r *renderer) header(p *draw.Page) {
	h := r.plan.Header
	right := r.rightEdge()

	if h.Banner {
		for i, line := range banner {
			r.text(p, line, right-120, 10+float64(i)*3, draw.Left, r.typ.Banner(), r.pal.Title)
		}
		r.text(p, h.NumberText(), right, 25, draw.Right, r.typ.BannerNumber(), r.pal.Title)
		r.text(p, h.Title, layout.Margin, 18, draw.Left, r.typ.Subtitle(), r.pal.Text)
	} else {
		if h.Logo != nil && r.inv.Logo != nil {
			p.Add(draw.Image{
				X: h.Logo.X, Y: h.Logo.Y, W: h.Logo.W, H: h.Logo.H,
				Data: r.inv.Logo.Data, Format: r.inv.Logo.Format,
			})
		}
		r.text(p, "INVOICE", right, 18, draw.Right, r.typ.Heading(), r.pal.Title)
		r.text(p, h.NumberText(), right, 25, draw.Right, r.typ.Number(), r.pal.Title)
		r.text(p, h.Title, r.plan.PageWidth/2, 18, draw.Center, r.typ.Subtitle(), r.pal.Text)
	}

	if b := h.Badge; b != nil {
		p.Add(draw.FillRect{X: b.X, Y: b.Y, W: b.W, H: b.H, Color: r.pal.Accent})
		if r.pal.ShowFill {
			// The page itself is accent coloured in filled mode.
			p.Add(draw.StrokeRect{X: b.X, Y: b.Y, W: b.W, H: b.H, Color: r.pal.Ink, LineWidth: LineWidth})
		}
		r.text(p, h.Status, b.X+b.W/2, b.Y+3.6, draw.Center, r.typ.Badge(), r.pal.TextOnAccent)
	}
	r.headerRule(p)
}

func (r *renderer) continuationHeader(p *draw.Page, pg layout.Page) {
	right := r.rightEdge()
	num := r.plan.Header.Number
	r.text(p, fmt.Sprintf("INVOICE %s (CONTINUED)", num), right, 15, draw.Right, r.typ.Number(), r.pal.Title)
	r.text(p, fmt.Sprintf("PAGE %d OF %d", pg.Number, r.plan.TotalPages()), right, 20, draw.Right, r.typ.Subtitle(), r.pal.Title)
	r.headerRule(p)
}

// box paints a section background and frame per the palette flags.
func (r *renderer) box(p *draw.Page, x, y, w, h float64) {
	if r.pal.ShowFill {
		p.Add(draw.FillRect{X: x, Y: y, W: w, H: h, Color: r.pal.Fill})
	}
	if r.pal.ShowBorders {
		p.Add(draw.StrokeRect{X: x, Y: y, W: w, H: h, Color: r.pal.Ink, LineWidth: LineWidth})
	}
}

// title draws a section label inset from the top-left corner of a box,
// with a dashed rule beneath it when the palette asks for dividers.
func (r *renderer) title(p *draw.Page, s string, x, y, w float64) {
	tx := x + layout.TextInset
	r.text(p, s, tx, y+layout.TitleBand, draw.Left, r.typ.SectionTitle(), r.pal.TextOnFill)
	if r.pal.Dividers {
		dy := y + layout.TitleBand + 1.5
		p.Add(draw.Line{X1: tx, Y1: dy, X2: x + w - layout.TextInset, Y2: dy, Color: r.pal.Ink, LineWidth: LineWidth, Dashed: true})
	}
}

func (r *renderer) bodyLines(p *draw.Page, lines []string, x, top float64) {
	for i, l := range lines {
		y := top + layout.TitleBand + layout.TitleGap + float64(i)*layout.LineHeight
		r.text(p, l, x+layout.TextInset, y, draw.Left, r.typ.Body(), r.pal.TextOnFill)
	}
}

func (r *renderer) grid(p *draw.Page) {
	g := r.plan.Grid
	r.box(p, layout.Margin, g.Top, r.plan.ContentWidth, g.Height)
	for i, col := range g.Columns {
		if i > 0 && r.pal.ShowBorders {
			p.Add(draw.Line{X1: col.X, Y1: g.Top, X2: col.X, Y2: g.Top + g.Height, Color: r.pal.Ink, LineWidth: LineWidth})
		}
		r.title(p, col.Title, col.X, g.Top, col.Width)
		for j, l := range col.Lines {
			f := r.typ.Body()
			if l.Bold {
				f = r.typ.BodyBold()
			}
			y := g.Top + layout.TitleBand + layout.TitleGap + float64(j)*layout.LineHeight
			r.text(p, l.Text, col.X+layout.TextInset, y, draw.Left, f, r.pal.TextOnFill)
		}
	}
}

func (r *renderer) notes(p *draw.Page, top float64) {
	n := r.plan.Notes
	if n == nil {
		return
	}
	r.box(p, layout.Margin, top, r.plan.ContentWidth, n.Height)
	r.title(p, "NOTES", layout.Margin, top, r.plan.ContentWidth)
	r.bodyLines(p, n.Lines, layout.Margin, top)
}

func (r *renderer) tableStyle() table.TableStyle {
	s := table.TableStyle{
		CellPadding:    table.Padding{Top: layout.RowBaseline, Left: layout.CellInset, Right: layout.CellInset},
		HeaderBaseline: layout.HeadBaseline,
		LineHeight:     layout.LineHeight,
		CellFont:       table.Font(r.typ.Body()),
		TextColor:      r.pal.TextOnTable,
		HeaderStyle: &table.CellStyle{
			Font:      table.Font(r.typ.BodyBold()),
			TextColor: table.Color(r.pal.TextOnFill),
		},
	}
	if r.pal.ShowFill {
		s.HeaderStyle.FillColor = table.Color(r.pal.Fill)
		s.AlternateRows = &table.AlternateStyle{
			Even: table.CellStyle{FillColor: table.Color(r.pal.TableFill)},
			Odd:  table.CellStyle{FillColor: table.Color(r.pal.TableFill.Mix(r.pal.Fill, 0.35))},
		}
	}
	if r.pal.ShowBorders {
		s.Border = &table.BorderStyle{Width: LineWidth, Color: r.pal.Ink, Dashed: r.pal.Monochrome}
	}
	return s
}

func (r *renderer) items(p *draw.Page, pg layout.Page) {
	defs := make([]table.ColumnDef, len(r.plan.Columns))
	for i, c := range r.plan.Columns {
		defs[i] = c.Def
		defs[i].Width, defs[i].Fraction = c.Width, 0
	}
	tb := table.New(layout.Margin, pg.TableTop, r.plan.ContentWidth, defs...)
	tb.SetStyle(r.tableStyle())
	tb.SetHeader(layout.TableHeaderHeight)

	cur := r.inv.Meta.Currency
	if pg.EmptyState {
		row := tb.AddRow(layout.RowHeight)
		for _, c := range r.plan.Columns {
			if c.Key == layout.ColDescription {
				row.AddCell(EmptyStateText)
			} else {
				row.AddCell("")
			}
		}
	}
	for _, planned := range r.plan.Rows[pg.Start:pg.End] {
		it := r.inv.Items[planned.Item]
		row := tb.AddRow(planned.Height)
		for _, c := range r.plan.Columns {
			switch c.Key {
			case layout.ColType:
				row.AddCell(planned.Type)
			case layout.ColDescription:
				row.AddLines(planned.Description...)
			case layout.ColQuantity:
				row.AddCell(model.FormatQuantity(it.Quantity))
			case layout.ColRate:
				row.AddCell(model.FormatMoney(it.Rate, cur))
			case layout.ColAmount:
				row.AddCell(model.FormatMoney(it.Amount(), cur)).SetFont(r.typ.BodyBold())
			}
		}
	}
	tb.Render(p)
}

func (r *renderer) footer(p *draw.Page, top float64) {
	f := r.plan.Footer
	x := layout.Margin
	w := r.plan.ContentWidth
	split := x + f.PaymentWidth

	r.box(p, x, top, w, f.Height)
	if r.pal.ShowBorders {
		p.Add(draw.Line{X1: split, Y1: top, X2: split, Y2: top + f.Height, Color: r.pal.Ink, LineWidth: LineWidth})
	}

	r.title(p, "PAYMENT INSTRUCTIONS", x, top, f.PaymentWidth)
	r.bodyLines(p, f.Payment, x, top)
	if c := f.Code; c != nil {
		cx, cy := x+c.OffsetX, top+c.OffsetY
		// Scanners need dark modules on a light quiet zone.
		p.Add(draw.FillRect{X: cx - 1, Y: cy - 1, W: c.W + 2, H: c.H + 2, Color: palette.White})
		p.Add(draw.Code{X: cx, Y: cy, W: c.W, H: c.H, Payload: c.Payload, Symbology: string(c.Symbology)})
	}

	r.title(p, "TOTAL", split, top, f.TotalsWidth)
	left := split + layout.TextInset
	right := x + w - layout.TextInset
	base := top + layout.TitleBand + layout.TitleGap
	for i, l := range f.Breakdown {
		y := base + float64(i)*layout.LineHeight
		r.text(p, l.Label, left, y, draw.Left, r.typ.Body(), r.pal.TextOnFill)
		r.text(p, l.Value, right, y, draw.Right, r.typ.Body(), r.pal.TextOnFill)
	}

	gy := base + float64(len(f.Breakdown))*layout.LineHeight + layout.GrandTotalGap
	if len(f.Breakdown) > 0 {
		p.Add(draw.Line{X1: left, Y1: gy - 5, X2: right, Y2: gy - 5, Color: r.pal.Ink, LineWidth: LineWidth, Dashed: r.pal.Monochrome})
	}
	r.text(p, f.Grand.Label, left, gy, draw.Left, r.typ.GrandTotal(), r.pal.TextOnFill)
	r.text(p, f.Grand.Value, right, gy, draw.Right, r.typ.GrandTotal(), r.pal.TextOnFill)
}
