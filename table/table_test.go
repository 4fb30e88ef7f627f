package table_test

import (
	"math"
	"testing"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/palette"
	"github.com/lvillar/invoicepdf/table"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestWidths(t *testing.T) {
	tests := []struct {
		name  string
		cols  []table.ColumnDef
		total float64
		want  []float64
	}{
		{
			name:  "fractions",
			cols:  []table.ColumnDef{{Fraction: 0.5}, {Fraction: 0.15}, {Fraction: 0.15}, {Fraction: 0.2}},
			total: 200,
			want:  []float64{100, 30, 30, 40},
		},
		{
			name:  "fixed and auto",
			cols:  []table.ColumnDef{{Width: 40}, {}, {}},
			total: 100,
			want:  []float64{40, 30, 30},
		},
		{
			name:  "auto clamped",
			cols:  []table.ColumnDef{{Fraction: 0.5}, {MaxWidth: 20}, {MinWidth: 60}},
			total: 100,
			want:  []float64{50, 20, 60},
		},
		{
			name:  "overfull",
			cols:  []table.ColumnDef{{Width: 80}, {Width: 40}, {}},
			total: 100,
			want:  []float64{80, 40, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Widths(tt.cols, tt.total)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d widths, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !near(got[i], tt.want[i]) {
					t.Errorf("width[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBasicTable(t *testing.T) {
	tb := table.New(10, 50, 100,
		table.ColumnDef{Title: "DESCRIPTION", Fraction: 0.6},
		table.ColumnDef{Title: "QTY", Fraction: 0.2, Align: "C"},
		table.ColumnDef{Title: "AMOUNT", Fraction: 0.2, Align: "R"},
	)
	tb.SetStyle(table.TableStyle{
		CellPadding: table.Padding{Top: 6, Left: 1.3, Right: 1.3},
		LineHeight:  4,
		Border:      &table.BorderStyle{Width: 0.2, Color: palette.Black},
	})
	tb.SetHeader(8)
	r := tb.AddRow(10)
	r.AddCell("Widget")
	r.AddCell("2")
	r.AddCell("$10.00")

	var p draw.Page
	bottom := tb.Render(&p)
	if !near(bottom, 68) {
		t.Fatalf("bottom = %v, want 68", bottom)
	}

	var texts []draw.Text
	var frames int
	for _, c := range p.Commands {
		switch v := c.(type) {
		case draw.Text:
			texts = append(texts, v)
		case draw.StrokeRect:
			frames++
			if !near(v.H, 18) {
				t.Errorf("frame height = %v, want 18", v.H)
			}
		}
	}
	if frames != 1 {
		t.Errorf("frames = %d, want 1", frames)
	}
	if len(texts) != 6 {
		t.Fatalf("got %d texts, want 6", len(texts))
	}

	qty := texts[4]
	if qty.Align != draw.Center || !near(qty.X, 80) || !near(qty.Y, 64) {
		t.Errorf("qty text = %+v, want centred at x=80 y=64", qty)
	}
	amount := texts[5]
	if amount.Align != draw.Right || !near(amount.X, 108.7) {
		t.Errorf("amount text = %+v, want right-aligned at x=108.7", amount)
	}
}

func TestAlternatingRows(t *testing.T) {
	even := palette.MustHex("#EEEEEE")
	tb := table.New(0, 0, 60, table.ColumnDef{}, table.ColumnDef{})
	tb.SetStyle(table.TableStyle{
		AlternateRows: &table.AlternateStyle{
			Even: table.CellStyle{FillColor: table.Color(even)},
		},
	})
	for i := 0; i < 4; i++ {
		r := tb.AddRow(10)
		r.AddCellf("Row %d", i)
		r.AddCell("x")
	}

	var p draw.Page
	tb.Render(&p)

	var fills []draw.FillRect
	for _, c := range p.Commands {
		if f, ok := c.(draw.FillRect); ok {
			fills = append(fills, f)
		}
	}
	if len(fills) != 2 {
		t.Fatalf("got %d fills, want 2 (even rows only)", len(fills))
	}
	if !near(fills[0].Y, 0) || !near(fills[1].Y, 20) || !near(fills[0].W, 60) {
		t.Errorf("unexpected fills %+v", fills)
	}
}

func TestStyledCells(t *testing.T) {
	head := palette.MustHex("#003366")
	tb := table.New(0, 0, 90, table.ColumnDef{Title: "A"}, table.ColumnDef{Title: "B"}, table.ColumnDef{Title: "C"})
	tb.SetStyle(table.TableStyle{
		HeaderStyle: &table.CellStyle{
			FillColor: table.Color(head),
			TextColor: table.Color(palette.White),
			Font:      table.Font(draw.Font{Bold: true, Size: 8}),
		},
		LineHeight: 4,
	})
	tb.SetHeader(8)
	r := tb.AddRow(10)
	r.AddCell("Widget")
	r.AddCell("Hardware")
	r.AddCell("$5.00").SetAlign("R").SetFont(draw.Font{Bold: true, Size: 8})

	var p draw.Page
	tb.Render(&p)

	var headerTexts, boldTexts int
	for _, c := range p.Commands {
		if tx, ok := c.(draw.Text); ok {
			if tx.Color == palette.White {
				headerTexts++
			}
			if tx.Font.Bold {
				boldTexts++
			}
			if tx.Content == "$5.00" && tx.Align != draw.Right {
				t.Errorf("cell alignment not applied: %+v", tx)
			}
		}
	}
	if headerTexts != 3 {
		t.Errorf("header texts = %d, want 3", headerTexts)
	}
	if boldTexts != 4 {
		t.Errorf("bold texts = %d, want 4", boldTexts)
	}
}

func TestMultiLineCell(t *testing.T) {
	tb := table.New(0, 0, 50, table.ColumnDef{})
	tb.SetStyle(table.TableStyle{CellPadding: table.Padding{Top: 6}, LineHeight: 4})
	tb.AddRow(18).AddLines("first", "second", "third")

	var p draw.Page
	tb.Render(&p)
	texts := p.Commands
	if len(texts) != 3 {
		t.Fatalf("got %d commands, want 3", len(texts))
	}
	if y := texts[2].(draw.Text).Y; !near(y, 14) {
		t.Errorf("third baseline = %v, want 14", y)
	}
}

func TestEmptyTable(t *testing.T) {
	tb := table.New(0, 0, 60, table.ColumnDef{}, table.ColumnDef{})
	var p draw.Page
	if bottom := tb.Render(&p); bottom != 0 {
		t.Fatalf("bottom = %v, want 0", bottom)
	}
	if len(p.Commands) != 0 {
		t.Fatalf("empty table drew %d commands", len(p.Commands))
	}
}
