package doctpl

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Template is a saved document used to start new invoices. Line items are
// kept only when SaveLineItems is set.
type Template struct {
	Name          string `json:"name" yaml:"name"`
	SaveLineItems bool   `json:"saveLineItems" yaml:"saveLineItems"`
	Document      `yaml:",inline"`
}

// NewTemplate captures doc as a template.
func NewTemplate(name string, doc Document, saveLineItems bool) Template {
	if !saveLineItems {
		doc.Items = nil
	} else {
		doc.Items = append([]Item(nil), doc.Items...)
	}
	return Template{Name: name, SaveLineItems: saveLineItems, Document: doc}
}

// ParseTemplate decodes a JSON or YAML template.
func ParseTemplate(data []byte) (*Template, error) {
	var t Template
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		if err := json.Unmarshal(trimmed, &t); err != nil {
			return nil, fmt.Errorf("doctpl: parsing JSON template: %w", err)
		}
		return &t, nil
	}
	if err := yaml.Unmarshal(trimmed, &t); err != nil {
		return nil, fmt.Errorf("doctpl: parsing YAML template: %w", err)
	}
	return &t, nil
}

// Apply loads the template into onto: every field the template sets
// replaces the current value. Line items and the logo are replaced only
// when the template carries them.
func (t Template) Apply(onto Document) Document {
	src := t.Document
	mergeParty(&onto.Sender, src.Sender)
	mergeParty(&onto.Recipient, src.Recipient)

	m, s := &onto.Meta, src.Meta
	set(&m.Number, s.Number)
	set(&m.Abbrev, s.Abbrev)
	set(&m.Sequence, s.Sequence)
	set(&m.Title, s.Title)
	set(&m.IssueDate, s.IssueDate)
	set(&m.DueDate, s.DueDate)
	set(&m.Currency, s.Currency)
	set(&m.Status, s.Status)
	set(&m.Terms, s.Terms)
	if s.DueInDays > 0 {
		m.DueInDays = s.DueInDays
	}
	if s.InvoiceNumber != "" && s.Abbrev == "" {
		m.InvoiceNumber = s.InvoiceNumber
		m.Number, m.Abbrev, m.Sequence = "", "", ""
	}

	if len(src.Items) > 0 {
		onto.Items = append([]Item(nil), src.Items...)
	}
	if len(src.PaymentInstructions) > 0 {
		onto.PaymentInstructions = append(Lines(nil), src.PaymentInstructions...)
	}
	if src.PaymentCode != nil {
		pc := *src.PaymentCode
		onto.PaymentCode = &pc
	}
	set(&onto.Notes, src.Notes)
	set(&onto.NotesPosition, src.NotesPosition)
	set(&onto.Theme.Accent, src.Theme.Accent)
	set(&onto.Theme.Preset, src.Theme.Preset)
	set(&onto.Theme.Mode, src.Theme.Mode)
	set(&onto.Theme.Paper, src.Theme.Paper)
	set(&onto.Theme.Orientation, src.Theme.Orientation)
	if src.Logo != nil {
		l := *src.Logo
		onto.Logo = &l
	}
	set(&onto.DescriptionPolicy, src.DescriptionPolicy)
	return onto
}

func mergeParty(dst *Party, src Party) {
	set(&dst.Name, src.Name)
	set(&dst.Company, src.Company)
	set(&dst.Website, src.Website)
	set(&dst.Phone, src.Phone)
	set(&dst.Address, src.Address)
	set(&dst.ContactNames, src.ContactNames)
	if len(src.Contact) > 0 {
		dst.Contact = append(Lines(nil), src.Contact...)
	}
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
