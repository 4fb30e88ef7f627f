package doctpl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lvillar/invoicepdf"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
)

var (
	// ErrLogoSource is returned by Invoice when a document read with
	// ParseUntrusted names a logo file instead of embedding the image.
	ErrLogoSource = errors.New("doctpl: logo src is not accepted, embed the image as data")

	// ErrLogo wraps logo data that cannot be read or decoded.
	ErrLogo = errors.New("doctpl: invalid logo")
)

// Parse decodes a JSON or YAML document. Input starting with '{' is JSON.
func Parse(data []byte) (*Document, error) {
	var doc Document
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("doctpl: parsing JSON document: %w", err)
		}
		return &doc, nil
	}
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("doctpl: parsing YAML document: %w", err)
	}
	return &doc, nil
}

// ParseUntrusted is Parse for documents that come from outside the process,
// such as request bodies. Their logos must carry inline data; Invoice
// rejects a logo src with ErrLogoSource without touching the filesystem.
func ParseUntrusted(data []byte) (*Document, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.untrusted = true
	return doc, nil
}

// Load reads and parses a document file. A relative logo path is resolved
// against the file's directory.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("doctpl: reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Logo != nil && doc.Logo.Src != "" && !filepath.IsAbs(doc.Logo.Src) {
		doc.Logo.Src = filepath.Join(filepath.Dir(path), doc.Logo.Src)
	}
	return doc, nil
}

// Render parses a JSON or YAML document and writes the invoice PDF to w.
func Render(w io.Writer, data []byte, opts ...invoicepdf.Option) error {
	doc, err := Parse(data)
	if err != nil {
		return err
	}
	_, err = RenderDocument(context.Background(), w, doc, opts...)
	return err
}

// RenderDocument converts doc and exports it as a PDF to w. Options given
// here take precedence over the document's own settings.
func RenderDocument(ctx context.Context, w io.Writer, doc *Document, opts ...invoicepdf.Option) (*invoicepdf.Result, error) {
	inv, err := doc.Invoice()
	if err != nil {
		return nil, err
	}
	return invoicepdf.Export(ctx, w, inv, append(doc.Options(), opts...)...)
}

// Options returns the export options the document asks for.
func (d *Document) Options() []invoicepdf.Option {
	var opts []invoicepdf.Option
	if p, err := layout.ParseDescriptionPolicy(d.DescriptionPolicy); err == nil {
		opts = append(opts, invoicepdf.WithDescriptionPolicy(p))
	}
	return opts
}

// Invoice converts the document into an invoice snapshot. Only an
// unreadable logo is an error; every other field is substituted.
func (d *Document) Invoice() (model.Invoice, error) {
	inv := model.Invoice{
		Sender: model.Sender{
			Name:    first(d.Sender.Name, d.Sender.Company),
			Website: d.Sender.Website,
			Phone:   d.Sender.Phone,
			Address: d.Sender.Address,
		},
		Recipient: model.Recipient{
			Company:      first(d.Recipient.Company, d.Recipient.Name),
			ContactNames: d.Recipient.ContactNames,
			Address:      d.Recipient.Address,
			ContactBlock: d.Recipient.Contact,
		},
		Meta:                d.meta(),
		PaymentInstructions: d.PaymentInstructions,
		Notes:               d.Notes,
		NotesPosition:       model.NotesPosition(strings.ToLower(strings.TrimSpace(d.NotesPosition))),
		Theme:               d.theme(),
	}
	if inv.Recipient.ContactBlock == nil && d.Recipient.Phone != "" {
		inv.Recipient.ContactBlock = []string{d.Recipient.Phone}
	}
	for _, it := range d.Items {
		inv.Items = append(inv.Items, model.LineItem{
			Type:        it.Type,
			Description: it.Description,
			Quantity:    it.Quantity.Decimal,
			Rate:        it.Rate.Decimal,
		})
	}
	if pc := d.PaymentCode; pc != nil {
		inv.PaymentCode = &model.PaymentCode{
			Payload:   pc.Payload,
			Symbology: model.Symbology(strings.ToLower(strings.TrimSpace(pc.Symbology))),
		}
	}
	if d.Logo != nil {
		logo, err := d.Logo.load(!d.untrusted)
		if err != nil {
			return model.Invoice{}, err
		}
		inv.Logo = logo
	}
	return model.Normalize(inv), nil
}

func (d *Document) meta() model.Meta {
	in := d.Meta
	m := model.Meta{
		Number:    in.Number,
		Abbrev:    in.Abbrev,
		Sequence:  in.Sequence,
		Title:     in.Title,
		IssueDate: model.ParseDate(in.IssueDate),
		DueDate:   model.ParseDate(in.DueDate),
		Currency:  in.Currency,
		Status:    in.Status,
		Terms:     in.Terms,
	}
	if m.Number == "" && m.Abbrev == "" && m.Sequence == "" && in.InvoiceNumber != "" {
		if abbrev, seq, ok := model.SplitNumber(in.InvoiceNumber); ok {
			m.Abbrev, m.Sequence = abbrev, seq
		} else {
			m.Number = in.InvoiceNumber
		}
	}
	if m.Abbrev == "" && m.Number == "" {
		m.Abbrev = model.Abbreviate(first(d.Recipient.Company, d.Recipient.Name))
	}
	if m.DueDate.IsZero() && in.DueInDays > 0 && !m.IssueDate.IsZero() {
		m.DueDate = model.DueIn(m.IssueDate, in.DueInDays)
	}
	return m
}

func (d *Document) theme() model.Theme {
	t := model.Theme{
		Accent:      d.Theme.Accent,
		Paper:       model.PaperSize(d.Theme.Paper),
		Orientation: model.Orientation(strings.ToLower(strings.TrimSpace(d.Theme.Orientation))),
	}
	if t.Accent == "" {
		if c, ok := palette.Presets[strings.ToLower(strings.TrimSpace(d.Theme.Preset))]; ok {
			t.Accent = c.Hex()
		}
	}
	t.Mode, _ = palette.ParseMode(d.Theme.Mode)
	return t
}

func (l *Logo) load(allowFiles bool) (*model.Logo, error) {
	var data []byte
	switch {
	case l.Data != "":
		raw := l.Data
		if i := strings.Index(raw, ";base64,"); i >= 0 {
			raw = raw[i+len(";base64,"):]
		}
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: decoding: %w", ErrLogo, err)
		}
		data = b
	case l.Src != "":
		if !allowFiles {
			return nil, ErrLogoSource
		}
		b, err := os.ReadFile(l.Src)
		if err != nil {
			return nil, fmt.Errorf("%w: reading: %w", ErrLogo, err)
		}
		data = b
	default:
		return nil, nil
	}
	logo, err := model.NewLogo(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogo, err)
	}
	return logo, nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
