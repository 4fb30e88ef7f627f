package layout

import (
	"math"
	"strings"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/measure"
	"github.com/lvillar/invoicepdf/model"
)

// TextLine is one pre-wrapped body line.
type TextLine struct {
	Text string
	Bold bool
}

// GridColumn is one of the four info grid cells.
type GridColumn struct {
	Title string
	X     float64
	Width float64
	Lines []TextLine
}

// Grid is the sender / recipient / contact / specifications block on page 1.
type Grid struct {
	Top     float64
	Height  float64
	Columns []GridColumn
}

// Notes is the free text block placed above or below the line items.
type Notes struct {
	Position model.NotesPosition
	Height   float64
	Lines    []string
}

// CodeBox positions a payment barcode relative to the footer top.
type CodeBox struct {
	OffsetX, OffsetY float64
	W, H             float64
	Payload          string
	Symbology        model.Symbology
}

// TotalLine is a label and a right-aligned money value.
type TotalLine struct {
	Label string
	Value string
}

// Footer holds the side-by-side payment and totals boxes. Both share one
// height and are drawn on the last page only.
type Footer struct {
	Height        float64
	PaymentWidth  float64
	TotalsWidth   float64
	PaymentHeight float64 // height the payment box alone would need
	TotalsHeight  float64 // height the totals box alone would need
	Payment       []string
	Code          *CodeBox
	Breakdown     []TotalLine
	Grand         TotalLine
}

// SectionHeight is the height of a titled box holding lines of body text:
// title band, title gap, the lines and bottom padding, never below min.
func SectionHeight(lines int, min float64) float64 {
	h := TitleBand + TitleGap + float64(lines)*LineHeight + BottomPadding
	return math.Max(h, min)
}

// TotalsHeight is the totals box height for n breakdown lines. The grand
// total adds one line and GrandTotalGap of separation.
func TotalsHeight(n int) float64 {
	return TitleBand + TitleGap + float64(n)*LineHeight + GrandTotalGap + LineHeight + BottomPadding
}

// FooterHeight is the shared height of the payment and totals boxes.
func FooterHeight(payment, totals float64) float64 {
	return math.Max(math.Max(payment, totals), MinFooterHeight)
}

type wrapper struct {
	m measure.Measurer
}

func (w wrapper) wrap(text string, width float64, f draw.Font) ([]string, error) {
	return measure.Wrap(w.m, text, width, f)
}

// lines wraps text and tags every line with bold.
func (w wrapper) lines(text string, width float64, f draw.Font) ([]TextLine, error) {
	wrapped, err := w.wrap(text, width, f)
	if err != nil {
		return nil, err
	}
	out := make([]TextLine, len(wrapped))
	for i, l := range wrapped {
		out[i] = TextLine{Text: l, Bold: f.Bold}
	}
	return out, nil
}

func buildGrid(w wrapper, inv model.Invoice, typ Typography, contentW float64) (Grid, error) {
	colW := contentW / 4
	wrapW := colW - 2*TextInset
	body, bold := typ.Body(), typ.BodyBold()

	type part struct {
		text string
		font draw.Font
	}
	prefixed := func(prefix, v string) string {
		if v == "" {
			return ""
		}
		return prefix + v
	}
	m := inv.Meta
	columns := []struct {
		title string
		parts []part
	}{
		{"FROM", []part{
			{inv.Sender.Name, bold},
			{inv.Sender.Website, body},
			{prefixed("TEL: ", inv.Sender.Phone), body},
			{inv.Sender.Address, body},
		}},
		{"BILL TO", []part{
			{inv.Recipient.Company, bold},
			{prefixed("ATTN: ", inv.Recipient.ContactNames), body},
			{inv.Recipient.Address, body},
		}},
		{"RECIPIENT CONTACT", []part{
			{strings.Join(inv.Recipient.ContactBlock, "\n"), body},
		}},
		{"SPECIFICATIONS", []part{
			{"ISSUED: " + m.IssueDate.Display(), body},
			{"DUE: " + m.DueDate.Display(), body},
			{"CURRENCY: " + m.Currency, body},
			{"TERMS: " + m.TermsLabel(), body},
		}},
	}

	g := Grid{Columns: make([]GridColumn, len(columns))}
	maxLines := 0
	for i, c := range columns {
		col := GridColumn{Title: c.title, X: Margin + float64(i)*colW, Width: colW}
		for _, p := range c.parts {
			ls, err := w.lines(p.text, wrapW, p.font)
			if err != nil {
				return Grid{}, err
			}
			col.Lines = append(col.Lines, ls...)
		}
		if len(col.Lines) > maxLines {
			maxLines = len(col.Lines)
		}
		g.Columns[i] = col
	}
	g.Top = ContentStart
	g.Height = SectionHeight(maxLines, MinGridHeight)
	return g, nil
}

func buildNotes(w wrapper, inv model.Invoice, typ Typography, contentW float64) (*Notes, error) {
	if inv.Notes == "" {
		return nil, nil
	}
	lines, err := w.wrap(inv.Notes, contentW-2*TextInset, typ.Body())
	if err != nil {
		return nil, err
	}
	return &Notes{
		Position: inv.NotesPosition,
		Height:   SectionHeight(len(lines), MinNotesHeight),
		Lines:    lines,
	}, nil
}

func buildFooter(w wrapper, inv model.Invoice, typ Typography, contentW float64) (Footer, error) {
	f := Footer{
		PaymentWidth: contentW * PaymentShare,
	}
	f.TotalsWidth = contentW - f.PaymentWidth

	// A payment code sits in the top right corner of the payment box and
	// narrows the instruction text beside it.
	textW := f.PaymentWidth - 2*TextInset
	minPayment := 0.0
	if pc := inv.PaymentCode; pc != nil {
		cw, ch := QRSize, QRSize
		if pc.Symbology == model.PDF417 {
			cw, ch = PDF417Width, PDF417Ht
		}
		f.Code = &CodeBox{
			OffsetX:   f.PaymentWidth - TextInset - cw,
			OffsetY:   TitleBand - 2,
			W:         cw,
			H:         ch,
			Payload:   pc.Payload,
			Symbology: pc.Symbology,
		}
		textW -= cw + TextInset
		minPayment = f.Code.OffsetY + ch + BottomPadding
	}

	for _, instr := range inv.PaymentInstructions {
		lines, err := w.wrap(instr, textW, typ.Body())
		if err != nil {
			return Footer{}, err
		}
		f.Payment = append(f.Payment, lines...)
	}
	f.PaymentHeight = math.Max(SectionHeight(len(f.Payment), MinFooterHeight), minPayment)

	cur := inv.Meta.Currency
	b := inv.Subtotals()
	if b.HasCategories {
		for _, c := range b.Categories {
			f.Breakdown = append(f.Breakdown, TotalLine{Label: c.Name + ":", Value: model.FormatMoney(c.Total, cur)})
		}
		if b.ShowOther() {
			f.Breakdown = append(f.Breakdown, TotalLine{Label: "Other:", Value: model.FormatMoney(b.Uncategorized, cur)})
		}
	}
	f.Grand = TotalLine{Label: "TOTAL:", Value: model.FormatMoney(inv.Subtotal(), cur)}

	// Labels give way to values when a category name is too long.
	inner := f.TotalsWidth - 2*TextInset
	for i, l := range f.Breakdown {
		vw, err := w.m.Width(l.Value, typ.Body())
		if err != nil {
			return Footer{}, err
		}
		label, err := measure.Fit(w.m, l.Label, inner-vw-TextInset, typ.Body())
		if err != nil {
			return Footer{}, err
		}
		f.Breakdown[i].Label = label
	}

	f.TotalsHeight = TotalsHeight(len(f.Breakdown))
	f.Height = FooterHeight(f.PaymentHeight, f.TotalsHeight)
	return f, nil
}

// Row is one planned line-item row.
type Row struct {
	Item        int // index into the normalized invoice items
	Height      float64
	Type        string
	Description []string
}

func buildRows(w wrapper, inv model.Invoice, typ Typography, cols []Column, policy DescriptionPolicy) ([]Row, error) {
	var descW, typeW float64
	for _, c := range cols {
		switch c.Key {
		case ColDescription:
			descW = c.Width - 2*CellInset
		case ColType:
			typeW = c.Width - 2*CellInset
		}
	}

	rows := make([]Row, len(inv.Items))
	for i, it := range inv.Items {
		lines, err := w.wrap(it.Description, descW, typ.Body())
		if err != nil {
			return nil, err
		}
		if policy == Truncate && len(lines) > 1 {
			lines = lines[:1]
		}
		r := Row{
			Item:        i,
			Description: lines,
			Height:      RowHeight + float64(max(len(lines)-1, 0))*LineHeight,
		}
		if typeW > 0 && it.Type != "" {
			r.Type, err = measure.Fit(w.m, it.Type, typeW, typ.Body())
			if err != nil {
				return nil, err
			}
		}
		rows[i] = r
	}
	return rows, nil
}
