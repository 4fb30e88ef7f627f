package layout

import (
	"math"
	"strings"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/measure"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
)

// eps absorbs floating point noise in capacity comparisons.
const eps = 1e-9

// Options configures planning.
type Options struct {
	// Measurer must measure with the fonts the target backend draws with.
	Measurer measure.Measurer
	Policy   DescriptionPolicy
}

// Box is a positioned rectangle.
type Box struct {
	X, Y, W, H float64
}

// Header is the page-1 branding band above HeaderRule.
type Header struct {
	Number string
	Title  string
	Status string
	Logo   *Box // nil when there is no logo or in terminal mode
	Badge  *Box // nil when there is no status
	Banner bool // terminal mode ASCII banner
}

// Page is the plan for one sheet.
type Page struct {
	Number       int
	Continuation bool

	// Rows [Start, End) of Plan.Rows are drawn on this page.
	Start, End int

	ShowTable  bool
	TableTop   float64
	EmptyState bool

	ShowGrid bool // page 1 only; the grid sits at ContentStart

	ShowNotes bool
	NotesTop  float64

	ShowFooter bool
	FooterTop  float64
}

// RowCount returns the number of item rows on the page.
func (p Page) RowCount() int { return p.End - p.Start }

// Plan is the complete, immutable layout of one invoice.
type Plan struct {
	PageWidth    float64
	PageHeight   float64
	ContentWidth float64
	Policy       DescriptionPolicy
	Type         Typography

	Header   Header
	Grid     Grid
	Notes    *Notes
	Footer   Footer
	Columns  []Column
	HasTypes bool
	Rows     []Row
	Pages    []Page

	// Capacities in fixed-height rows, as reported to callers.
	MaxRowsFirst        int
	MaxRowsContinuation int
}

// TotalPages returns the number of pages.
func (p *Plan) TotalPages() int { return len(p.Pages) }

// ColumnWidths returns the line-item column widths.
func (p *Plan) ColumnWidths() []float64 {
	out := make([]float64, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Width
	}
	return out
}

// New computes the layout of inv. The invoice is normalized first, so the
// plan always refers to the normalized item order.
func New(inv model.Invoice, opts Options) (*Plan, error) {
	if opts.Measurer == nil {
		return nil, measure.ErrUnavailable
	}
	inv = model.Normalize(inv)
	pal := inv.Palette()

	typ := Typography{Family: draw.Sans}
	if pal.Monochrome {
		typ.Family = draw.Mono
	}
	pw, ph := inv.Theme.PageSize()
	p := &Plan{
		PageWidth:    pw,
		PageHeight:   ph,
		ContentWidth: pw - 2*Margin,
		Policy:       opts.Policy,
		Type:         typ,
		HasTypes:     inv.HasCategories(),
	}
	w := wrapper{m: opts.Measurer}

	var err error
	if p.Header, err = buildHeader(w, inv, pal, typ, pw); err != nil {
		return nil, err
	}
	if p.Grid, err = buildGrid(w, inv, typ, p.ContentWidth); err != nil {
		return nil, err
	}
	if p.Notes, err = buildNotes(w, inv, typ, p.ContentWidth); err != nil {
		return nil, err
	}
	if p.Footer, err = buildFooter(w, inv, typ, p.ContentWidth); err != nil {
		return nil, err
	}
	p.Columns = itemColumns(Margin, p.ContentWidth, p.HasTypes)
	if p.Rows, err = buildRows(w, inv, typ, p.Columns, opts.Policy); err != nil {
		return nil, err
	}
	if err := p.paginate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) noFit(section string, available, required float64) *LayoutError {
	return &LayoutError{
		Section:      section,
		PageWidth:    p.PageWidth,
		PageHeight:   p.PageHeight,
		Available:    available,
		Required:     required,
		ColumnWidths: p.ColumnWidths(),
	}
}

// paginate distributes rows over pages. Rows are packed greedily; with
// fixed-height rows this equals floor((available - header) / rowHeight).
func (p *Plan) paginate() error {
	footerTop := p.PageHeight - BottomMargin - p.Footer.Height
	pageBottom := p.PageHeight - BottomMargin

	// Page 1: grid, then notes above, then the table.
	itemsTop := ContentStart + p.Grid.Height + Spacer
	if p.Grid.Top+p.Grid.Height > pageBottom+eps {
		return p.noFit("info grid", pageBottom-ContentStart, p.Grid.Height)
	}
	first := Page{Number: 1, ShowGrid: true}

	reserveBelow := 0.0
	if n := p.Notes; n != nil {
		if n.Position == model.NotesBelow {
			reserveBelow = n.Height + Spacer
		} else {
			first.ShowNotes = true
			first.NotesTop = itemsTop
			itemsTop += n.Height + Spacer
		}
		if itemsTop-Spacer+reserveBelow > pageBottom+eps {
			return p.noFit("notes", pageBottom-(ContentStart+p.Grid.Height+Spacer), n.Height)
		}
	}

	availFirst := footerTop - Spacer - itemsTop - reserveBelow
	availCont := footerTop - Spacer - ContentStart
	p.MaxRowsFirst = maxRows(availFirst)
	p.MaxRowsContinuation = maxRows(availCont)

	total := len(p.Rows)
	end := pack(p.Rows, 0, availFirst-TableHeaderHeight)
	first.End = end
	first.TableTop = itemsTop
	tableH := 0.0
	switch {
	case total == 0:
		if availFirst+eps < TableHeaderHeight+RowHeight {
			return p.noFit("line items", availFirst, TableHeaderHeight+RowHeight)
		}
		first.ShowTable = true
		first.EmptyState = true
		tableH = TableHeaderHeight + RowHeight
	case end > 0:
		first.ShowTable = true
		tableH = TableHeaderHeight + p.rowsHeight(0, end)
	}

	if p.Notes != nil && p.Notes.Position == model.NotesBelow {
		first.ShowNotes = true
		first.NotesTop = itemsTop
		if tableH > 0 {
			first.NotesTop += tableH + Spacer
		}
	}
	p.Pages = []Page{first}

	// Continuation pages restart the table at ContentStart.
	room := availCont - TableHeaderHeight
	for start := end; start < total; start = end {
		if p.Rows[start].Height > room+eps {
			return p.noFit("line items", availCont, TableHeaderHeight+p.Rows[start].Height)
		}
		end = pack(p.Rows, start, room)
		p.Pages = append(p.Pages, Page{
			Number:       len(p.Pages) + 1,
			Continuation: true,
			Start:        start,
			End:          end,
			ShowTable:    true,
			TableTop:     ContentStart,
		})
	}

	last := &p.Pages[len(p.Pages)-1]
	last.ShowFooter = true
	last.FooterTop = footerTop
	return nil
}

// pack returns the end index of the rows starting at start that fit in room.
func pack(rows []Row, start int, room float64) int {
	i := start
	for i < len(rows) && rows[i].Height <= room+eps {
		room -= rows[i].Height
		i++
	}
	return i
}

func maxRows(avail float64) int {
	n := math.Floor((avail-TableHeaderHeight)/RowHeight + eps)
	if n < 0 {
		return 0
	}
	return int(n)
}

func (p *Plan) rowsHeight(start, end int) float64 {
	h := 0.0
	for _, r := range p.Rows[start:end] {
		h += r.Height
	}
	return h
}

func buildHeader(w wrapper, inv model.Invoice, pal palette.Palette, typ Typography, pageW float64) (Header, error) {
	h := Header{
		Number: strings.ToUpper(inv.Meta.InvoiceNumber()),
		Title:  inv.Meta.Title,
		Status: strings.ToUpper(inv.Meta.Status),
		Banner: pal.Monochrome,
	}
	if inv.Logo != nil && !pal.Monochrome {
		lw, lh := inv.Logo.Fit(LogoMaxW, LogoMaxH)
		if lw > 0 {
			h.Logo = &Box{X: Margin, Y: LogoY, W: lw, H: lh}
		}
	}
	if h.Status == "" {
		return h, nil
	}

	numberText, numberFont := h.NumberText(), typ.Number()
	if h.Banner {
		numberFont = typ.BannerNumber()
	}
	nw, err := w.m.Width(numberText, numberFont)
	if err != nil {
		return Header{}, err
	}
	sw, err := w.m.Width(h.Status, typ.Badge())
	if err != nil {
		return Header{}, err
	}
	bw := sw + 2*TextInset
	h.Badge = &Box{X: pageW - Margin - nw - 3 - bw, Y: 21, W: bw, H: 5}
	return h, nil
}

// NumberText is the invoice number line of the page-1 header.
func (h Header) NumberText() string {
	if h.Banner {
		return ">>> INVOICE NO: " + h.Number + " <<<"
	}
	return h.Number
}
