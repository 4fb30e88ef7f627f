package model

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/invoicepdf/palette"
)

func sampleInvoice() Invoice {
	return Invoice{
		Sender:    Sender{Name: "Acme Studio", Phone: "555-0100", Address: "1 Main St"},
		Recipient: Recipient{Company: "The Widget Foundation", ContactBlock: []string{"ap@widget.test", " ", "555-0199"}},
		Meta: Meta{
			Abbrev:    "twf",
			Sequence:  "07",
			IssueDate: ParseDate("2024-03-01"),
			DueDate:   ParseDate("2024-03-15"),
			Currency:  "eur",
		},
		Items: []LineItem{
			NewLineItem("Meeting", "Kickoff", 1, 150),
			NewLineItem("Design", "Mockups", 2, 100),
			NewLineItem("", "Travel", 1, 50),
			NewLineItem("", "   ", 3, 10),
		},
		PaymentInstructions: []string{"IBAN DE00 0000", "", "  BIC XXXX  "},
		Theme:               Theme{Accent: "nope", Paper: "A4"},
	}
}

func TestAmountInvariant(t *testing.T) {
	tests := []struct {
		qty, rate string
		want      string
	}{
		{"1", "150", "150"},
		{"1.5", "33.333", "50"},
		{"3", "0.335", "1.01"},
		{"2", "-25.125", "-50.25"},
		{"0", "99", "0"},
	}
	for _, tt := range tests {
		it := LineItem{Quantity: decimal.RequireFromString(tt.qty), Rate: decimal.RequireFromString(tt.rate)}
		assert.True(t, it.Amount().Equal(decimal.RequireFromString(tt.want)), "%s x %s = %s", tt.qty, tt.rate, it.Amount())

		edited := it.WithQuantity(decimal.NewFromInt(4))
		assert.True(t, edited.Amount().Equal(decimal.NewFromInt(4).Mul(it.Rate).Round(2)))
		assert.True(t, it.Quantity.Equal(decimal.RequireFromString(tt.qty)), "original must not change")
	}
}

func TestNormalize(t *testing.T) {
	inv := Normalize(sampleInvoice())

	assert.Len(t, inv.Items, 3)
	assert.Equal(t, []string{"IBAN DE00 0000", "BIC XXXX"}, inv.PaymentInstructions)
	assert.Equal(t, []string{"ap@widget.test", "555-0199"}, inv.Recipient.ContactBlock)
	assert.Equal(t, "EUR", inv.Meta.Currency)
	assert.Equal(t, "TWF", inv.Meta.Abbrev)
	assert.Equal(t, palette.Fallback.Hex(), inv.Theme.Accent)
	assert.Equal(t, A4, inv.Theme.Paper)
	assert.Equal(t, Portrait, inv.Theme.Orientation)
	assert.Equal(t, NotesAbove, inv.NotesPosition)
}

func TestSubtotals(t *testing.T) {
	inv := Normalize(sampleInvoice())
	b := inv.Subtotals()

	require.Len(t, b.Categories, 2)
	assert.Equal(t, "Design", b.Categories[0].Name)
	assert.Equal(t, "Meeting", b.Categories[1].Name)
	assert.Equal(t, "200.00", b.Categories[0].Total.StringFixed(2))
	assert.Equal(t, "150.00", b.Categories[1].Total.StringFixed(2))
	assert.Equal(t, "50.00", b.Uncategorized.StringFixed(2))
	assert.True(t, b.ShowOther())
	assert.True(t, inv.Subtotal().Equal(b.Sum()))
	assert.Equal(t, "400.00", inv.Subtotal().StringFixed(2))
}

func TestSubtotalsWithoutCategories(t *testing.T) {
	inv := Invoice{Items: []LineItem{NewLineItem("", "a", 1, 10), NewLineItem("", "b", 1, 5)}}
	b := inv.Subtotals()
	assert.False(t, b.HasCategories)
	assert.False(t, b.ShowOther())
	assert.Empty(t, b.Categories)
	assert.False(t, inv.HasCategories())
}

func TestShowOtherNeedsNonZeroCategorizedAmount(t *testing.T) {
	inv := Invoice{Items: []LineItem{
		NewLineItem("Refund", "charge", 1, 100),
		NewLineItem("Refund", "credit", 1, -100),
		NewLineItem("", "misc", 1, 50),
	}}
	b := inv.Subtotals()
	assert.True(t, b.HasCategories)
	assert.False(t, b.ShowOther())

	inv.Items = inv.Items[:2]
	assert.False(t, inv.Subtotals().ShowOther(), "no uncategorized amount")
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "IN-XXX-01", Meta{}.InvoiceNumber())
	assert.Equal(t, "IN-ABC-07", Meta{Abbrev: "abc", Sequence: "07"}.InvoiceNumber())
	assert.Equal(t, "2024/17", Meta{Number: "2024/17", Abbrev: "ABC"}.InvoiceNumber())

	abbrev, seq, ok := SplitNumber("IN-ABC-07")
	assert.True(t, ok)
	assert.Equal(t, "ABC", abbrev)
	assert.Equal(t, "07", seq)

	abbrev, seq, ok = SplitNumber("IN-ABC")
	assert.True(t, ok)
	assert.Equal(t, "ABC", abbrev)
	assert.Equal(t, DefaultSequence, seq)

	_, _, ok = SplitNumber("17")
	assert.False(t, ok)
}

func TestAbbreviate(t *testing.T) {
	tests := map[string]string{
		"The Widget Foundation":                 "W",
		"Acme & Sons Trading Co.":               "ASTC",
		"Bank of America":                       "BA",
		"one two three four five six seven":     "OTTFFS",
		"":                                      "",
		"   ":                                   "",
		"3M Company":                            "3C",
		"Society for the Prevention of Cruelty": "SPC",
	}
	for in, want := range tests {
		assert.Equal(t, want, Abbreviate(in), in)
	}
}

func TestDates(t *testing.T) {
	d := ParseDate("2024-03-01")
	assert.Equal(t, "01-MAR-2024", d.Display())
	assert.Equal(t, "", ParseDate("03/01/2024").Display())
	assert.Equal(t, "31-MAR-2024", DueIn(d, 30).Display())
	assert.True(t, DueIn(Date{}, 30).IsZero())

	var m struct {
		Due Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-12-31"}`), &m))
	assert.Equal(t, "31-DEC-2024", m.Due.Display())
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-12-31"}`, string(out))
}

func TestTermsLabel(t *testing.T) {
	issue := ParseDate("2024-03-01")
	assert.Equal(t, "NET 14", Meta{IssueDate: issue, DueDate: DueIn(issue, 14)}.TermsLabel())
	assert.Equal(t, "NET 30", Meta{}.TermsLabel())
	assert.Equal(t, "DUE ON RECEIPT", Meta{Terms: "due on receipt"}.TermsLabel())
	assert.Equal(t, "NET 30", Meta{IssueDate: issue, DueDate: ParseDate("2024-02-01")}.TermsLabel())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$400.00", FormatMoney(decimal.NewFromInt(400), "USD"))
	assert.Equal(t, "-$50.00", FormatMoney(decimal.NewFromInt(-50), "usd"))
	assert.Equal(t, "€1.01", FormatMoney(decimal.RequireFromString("1.005"), "EUR"))
	assert.Equal(t, "CHF 12.50", FormatMoney(decimal.RequireFromString("12.5"), "CHF"))
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero, "??"))
	assert.Equal(t, "USD", NormalizeCurrency("zzz1"))
}

func TestPaperDimensions(t *testing.T) {
	w, h := Letter.Dimensions(Portrait)
	assert.Equal(t, 215.9, w)
	assert.Equal(t, 279.4, h)

	w, h = Legal.Dimensions(Landscape)
	assert.Equal(t, 355.6, w)
	assert.Equal(t, 215.9, h)

	w, _ = PaperSize("tabloid").Dimensions(Portrait)
	assert.Equal(t, 215.9, w)
}

func TestLogoFit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 200, 50))))

	logo, err := NewLogo(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", logo.Format)

	w, h := logo.Fit(35, 15)
	assert.InDelta(t, 35, w, 1e-9)
	assert.InDelta(t, 8.75, h, 1e-9)

	tall := &Logo{Width: 10, Height: 100}
	w, h = tall.Fit(35, 15)
	assert.InDelta(t, 1.5, w, 1e-9)
	assert.InDelta(t, 15, h, 1e-9)

	_, err = NewLogo([]byte("not an image"))
	assert.Error(t, err)
}
