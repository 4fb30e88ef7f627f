// Package doctpl provides a JSON and YAML invoice document format.
//
// Documents are easy for both humans and LLMs to write. Every field is
// optional and loosely typed: numbers may be quoted, unknown colours and
// modes fall back to defaults, and malformed dates are left blank, so a
// document never fails to convert because of a single bad value.
//
// Example JSON:
//
//	{
//	  "sender": {"name": "Acme Studio"},
//	  "recipient": {"company": "Widget Co"},
//	  "invoice": {"abbrev": "WC", "sequence": "07", "issueDate": "2024-03-01"},
//	  "items": [
//	    {"description": "Logo design", "quantity": 2, "rate": "100.00"}
//	  ],
//	  "theme": {"preset": "blueprint", "mode": "filled", "paper": "a4"}
//	}
package doctpl

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Document is the top-level invoice document.
type Document struct {
	Sender              Party        `json:"sender" yaml:"sender"`
	Recipient           Party        `json:"recipient" yaml:"recipient"`
	Meta                Info         `json:"invoice" yaml:"invoice"`
	Items               []Item       `json:"items,omitempty" yaml:"items,omitempty"`
	PaymentInstructions Lines        `json:"paymentInstructions,omitempty" yaml:"paymentInstructions,omitempty"`
	PaymentCode         *PaymentCode `json:"paymentCode,omitempty" yaml:"paymentCode,omitempty"`
	Notes               string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	NotesPosition       string       `json:"notesPosition,omitempty" yaml:"notesPosition,omitempty"` // above, below
	Theme               Theme        `json:"theme" yaml:"theme"`
	Logo                *Logo        `json:"logo,omitempty" yaml:"logo,omitempty"`

	// DescriptionPolicy is "truncate" (default) or "wrap".
	DescriptionPolicy string `json:"descriptionPolicy,omitempty" yaml:"descriptionPolicy,omitempty"`

	untrusted bool // set by ParseUntrusted
}

// Party is the sender or the recipient. Name and Company are synonyms.
type Party struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	Company      string `json:"company,omitempty" yaml:"company,omitempty"`
	Website      string `json:"website,omitempty" yaml:"website,omitempty"`
	Phone        string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Address      string `json:"address,omitempty" yaml:"address,omitempty"`
	ContactNames string `json:"contactNames,omitempty" yaml:"contactNames,omitempty"`
	Contact      Lines  `json:"contact,omitempty" yaml:"contact,omitempty"`
}

// Info identifies the invoice.
type Info struct {
	Number    string `json:"number,omitempty" yaml:"number,omitempty"`
	Abbrev    string `json:"abbrev,omitempty" yaml:"abbrev,omitempty"`
	Sequence  string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	IssueDate string `json:"issueDate,omitempty" yaml:"issueDate,omitempty"` // YYYY-MM-DD
	DueDate   string `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	DueInDays int    `json:"dueInDays,omitempty" yaml:"dueInDays,omitempty"`
	Currency  string `json:"currency,omitempty" yaml:"currency,omitempty"`
	Status    string `json:"status,omitempty" yaml:"status,omitempty"`
	Terms     string `json:"terms,omitempty" yaml:"terms,omitempty"`

	// InvoiceNumber is the single-field number of older documents, such as
	// "IN-ABC-07". It is split into Abbrev and Sequence when those are empty.
	InvoiceNumber string `json:"invoiceNumber,omitempty" yaml:"invoiceNumber,omitempty"`
}

// Item is a line item.
type Item struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description" yaml:"description"`
	Quantity    Amount `json:"quantity" yaml:"quantity"`
	Rate        Amount `json:"rate" yaml:"rate"`
}

// PaymentCode is a payment barcode.
type PaymentCode struct {
	Payload   string `json:"payload" yaml:"payload"`
	Symbology string `json:"symbology,omitempty" yaml:"symbology,omitempty"` // qr, pdf417
}

// Theme selects colours and paper.
type Theme struct {
	Accent      string `json:"accent,omitempty" yaml:"accent,omitempty"` // hex colour
	Preset      string `json:"preset,omitempty" yaml:"preset,omitempty"` // used when accent is empty
	Mode        string `json:"mode,omitempty" yaml:"mode,omitempty"`     // outline, filled, terminal
	Paper       string `json:"paper,omitempty" yaml:"paper,omitempty"`   // letter, a4, legal
	Orientation string `json:"orientation,omitempty" yaml:"orientation,omitempty"`
}

// Logo is an image file path, resolved against the document's directory,
// or base64 encoded image data.
type Logo struct {
	Src  string `json:"src,omitempty" yaml:"src,omitempty"`
	Data string `json:"data,omitempty" yaml:"data,omitempty"`
}

// Amount is a decimal that accepts numbers and numeric strings. Anything
// else reads as zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount returns an Amount of v.
func NewAmount(v float64) Amount { return Amount{decimal.NewFromFloat(v)} }

func parseAmount(s string) Amount {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{decimal.Zero}
	}
	return Amount{d}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = parseAmount(s)
		return nil
	}
	*a = parseAmount(string(b))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(n *yaml.Node) error {
	*a = parseAmount(n.Value)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Amount) MarshalYAML() (any, error) {
	return a.String(), nil
}

// Lines is a list of text lines. A single string is split on newlines.
type Lines []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *Lines) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = splitLines(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Lines) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*l = splitLines(n.Value)
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

func splitLines(s string) Lines {
	s = strings.Trim(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
