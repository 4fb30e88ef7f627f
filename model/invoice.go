// Package model holds the normalized invoice snapshot consumed by the layout
// planner and the renderer.
//
// An Invoice is a plain value. Normalize trims and defaults every field so that
// downstream code never has to validate input again; nothing in this package
// returns an error for bad field data.
package model

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lvillar/invoicepdf/palette"
)

// Sender is the issuing party.
type Sender struct {
	Name    string `json:"name" yaml:"name"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
}

// Recipient is the billed party. ContactBlock holds one line per entry.
type Recipient struct {
	Company      string   `json:"company" yaml:"company"`
	ContactNames string   `json:"contactNames,omitempty" yaml:"contactNames,omitempty"`
	Address      string   `json:"address,omitempty" yaml:"address,omitempty"`
	ContactBlock []string `json:"contactBlock,omitempty" yaml:"contactBlock,omitempty"`
}

// NotesPosition places the notes block relative to the line-item table.
type NotesPosition string

const (
	NotesAbove NotesPosition = "above"
	NotesBelow NotesPosition = "below"
)

// Symbology selects the barcode used for a payment code.
type Symbology string

const (
	QR     Symbology = "qr"
	PDF417 Symbology = "pdf417"
)

// PaymentCode is an optional machine-readable payment reference printed in
// the payment box, such as an EPC QR payload or a bank transfer URI.
type PaymentCode struct {
	Payload   string    `json:"payload" yaml:"payload"`
	Symbology Symbology `json:"symbology,omitempty" yaml:"symbology,omitempty"`
}

// Theme selects the visual style and the page geometry.
type Theme struct {
	Accent      string       `json:"accent,omitempty" yaml:"accent,omitempty"`
	Mode        palette.Mode `json:"mode,omitempty" yaml:"mode,omitempty"`
	Paper       PaperSize    `json:"paper,omitempty" yaml:"paper,omitempty"`
	Orientation Orientation  `json:"orientation,omitempty" yaml:"orientation,omitempty"`
}

// Invoice is the normalized invoice snapshot.
type Invoice struct {
	Sender              Sender        `json:"sender" yaml:"sender"`
	Recipient           Recipient     `json:"recipient" yaml:"recipient"`
	Meta                Meta          `json:"meta" yaml:"meta"`
	Items               []LineItem    `json:"items" yaml:"items"`
	PaymentInstructions []string      `json:"paymentInstructions,omitempty" yaml:"paymentInstructions,omitempty"`
	PaymentCode         *PaymentCode  `json:"paymentCode,omitempty" yaml:"paymentCode,omitempty"`
	Notes               string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	NotesPosition       NotesPosition `json:"notesPosition,omitempty" yaml:"notesPosition,omitempty"`
	Theme               Theme         `json:"theme" yaml:"theme"`
	Logo                *Logo         `json:"-" yaml:"-"`
}

// Normalize returns a cleaned copy of inv. Strings are trimmed, blank
// payment lines and contact lines are dropped, items without a description
// are removed, and unknown enum values fall back to their defaults.
func Normalize(inv Invoice) Invoice {
	out := inv

	out.Sender = Sender{
		Name:    strings.TrimSpace(inv.Sender.Name),
		Website: strings.TrimSpace(inv.Sender.Website),
		Phone:   strings.TrimSpace(inv.Sender.Phone),
		Address: strings.TrimSpace(inv.Sender.Address),
	}
	out.Recipient = Recipient{
		Company:      strings.TrimSpace(inv.Recipient.Company),
		ContactNames: strings.TrimSpace(inv.Recipient.ContactNames),
		Address:      strings.TrimSpace(inv.Recipient.Address),
		ContactBlock: nonBlank(inv.Recipient.ContactBlock),
	}
	out.Meta = inv.Meta.normalize()

	out.Items = make([]LineItem, 0, len(inv.Items))
	for _, it := range inv.Items {
		it.Type = strings.TrimSpace(it.Type)
		it.Description = strings.TrimSpace(it.Description)
		if it.Description == "" {
			continue
		}
		out.Items = append(out.Items, it)
	}

	out.PaymentInstructions = nonBlank(inv.PaymentInstructions)
	if inv.PaymentCode != nil {
		pc := *inv.PaymentCode
		pc.Payload = strings.TrimSpace(pc.Payload)
		if pc.Symbology != PDF417 {
			pc.Symbology = QR
		}
		if pc.Payload == "" {
			out.PaymentCode = nil
		} else {
			out.PaymentCode = &pc
		}
	}

	out.Notes = strings.TrimSpace(inv.Notes)
	if out.NotesPosition != NotesBelow {
		out.NotesPosition = NotesAbove
	}

	out.Theme.Accent = palette.MustHex(inv.Theme.Accent).Hex()
	out.Theme.Paper = inv.Theme.Paper.normalize()
	if inv.Theme.Orientation != Landscape {
		out.Theme.Orientation = Portrait
	}

	if inv.Logo != nil && len(inv.Logo.Data) == 0 {
		out.Logo = nil
	}
	return out
}

// Palette derives the colours for the invoice theme.
func (inv Invoice) Palette() palette.Palette {
	return palette.Derive(inv.Theme.Accent, inv.Theme.Mode)
}

// HasCategories reports whether any item carries a category label. The type
// column and the subtotal breakdown depend on it for the whole table.
func (inv Invoice) HasCategories() bool {
	for _, it := range inv.Items {
		if strings.TrimSpace(it.Type) != "" {
			return true
		}
	}
	return false
}

// Subtotal is the rounded sum of all item amounts.
func (inv Invoice) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range inv.Items {
		sum = sum.Add(it.Amount())
	}
	return sum.Round(2)
}

// CategoryTotal is the amount billed under one category label.
type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
}

// Breakdown groups item amounts by category.
type Breakdown struct {
	Categories    []CategoryTotal // sorted by name
	Uncategorized decimal.Decimal
	HasCategories bool
}

// ShowOther reports whether the uncategorized remainder gets its own line:
// both the categorized and the uncategorized amounts must be non-zero.
func (b Breakdown) ShowOther() bool {
	return !b.Uncategorized.IsZero() && !b.Sum().Sub(b.Uncategorized).IsZero()
}

// Sum adds every category and the uncategorized remainder.
func (b Breakdown) Sum() decimal.Decimal {
	sum := b.Uncategorized
	for _, c := range b.Categories {
		sum = sum.Add(c.Total)
	}
	return sum
}

// Subtotals groups amounts by category, sorted lexicographically.
func (inv Invoice) Subtotals() Breakdown {
	groups := make(map[string]decimal.Decimal)
	var b Breakdown
	for _, it := range inv.Items {
		name := strings.TrimSpace(it.Type)
		if name == "" {
			b.Uncategorized = b.Uncategorized.Add(it.Amount())
			continue
		}
		b.HasCategories = true
		groups[name] = groups[name].Add(it.Amount())
	}
	for name, total := range groups {
		b.Categories = append(b.Categories, CategoryTotal{Name: name, Total: total})
	}
	sort.Slice(b.Categories, func(i, j int) bool {
		return b.Categories[i].Name < b.Categories[j].Name
	})
	return b
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
