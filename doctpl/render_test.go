package doctpl

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lvillar/invoicepdf"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
)

const jsonDocument = `{
	"sender": {"name": "Acme Studio", "phone": "555-0100", "address": "1 Main St"},
	"recipient": {"company": "Widget Co", "contactNames": "Jo Doe", "contact": "ap@widget.test\n555-0199"},
	"invoice": {"abbrev": "wc", "sequence": "07", "issueDate": "2024-03-01", "dueInDays": 14, "currency": "eur", "status": "Sent"},
	"items": [
		{"type": "Design", "description": "Logo", "quantity": 2, "rate": "100.00"},
		{"description": "Kickoff meeting", "quantity": "1.5", "rate": 50},
		{"description": "   ", "quantity": 1, "rate": 1}
	],
	"paymentInstructions": ["IBAN DE00 0000", ""],
	"paymentCode": {"payload": "BCD\n002\n1\nSCT", "symbology": "QR"},
	"notes": "Thank you.",
	"notesPosition": "below",
	"theme": {"preset": "blueprint", "mode": "filled", "paper": "A4", "orientation": "landscape"}
}`

func TestRenderFromJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, []byte(jsonDocument)); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output does not start with %PDF header")
	}
}

func TestRenderFromYAML(t *testing.T) {
	yamlDocument := `
sender:
  name: Acme Studio
recipient:
  company: Widget Co
invoice:
  number: 2024/0042
  issueDate: 2024-03-01
items:
  - description: Consulting
    quantity: 3
    rate: 120
paymentInstructions: |
  Bank transfer
  Reference 2024/0042
`
	doc, err := Parse([]byte(yamlDocument))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := len(doc.PaymentInstructions); got != 2 {
		t.Fatalf("payment lines = %d, want 2", got)
	}

	var buf bytes.Buffer
	res, err := RenderDocument(t.Context(), &buf, doc)
	if err != nil {
		t.Fatalf("RenderDocument failed: %v", err)
	}
	if res.Filename != "invoice-2024-0042.pdf" {
		t.Fatalf("Filename = %q", res.Filename)
	}
}

func TestDocumentInvoice(t *testing.T) {
	doc, err := Parse([]byte(jsonDocument))
	if err != nil {
		t.Fatal(err)
	}
	inv, err := doc.Invoice()
	if err != nil {
		t.Fatal(err)
	}

	if got := inv.Meta.InvoiceNumber(); got != "IN-WC-07" {
		t.Errorf("InvoiceNumber() = %q, want IN-WC-07", got)
	}
	if got := inv.Meta.Currency; got != "EUR" {
		t.Errorf("Currency = %q, want EUR", got)
	}
	if got := inv.Meta.DueDate.Display(); got != "15-MAR-2024" {
		t.Errorf("DueDate = %q, want 15-MAR-2024", got)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("items = %d, want 2 (blank description dropped)", len(inv.Items))
	}
	if got := inv.Items[1].Amount().StringFixed(2); got != "75.00" {
		t.Errorf("Amount = %s, want 75.00", got)
	}
	if got := model.FormatMoney(inv.Subtotal(), inv.Meta.Currency); got != "€275.00" {
		t.Errorf("Subtotal = %s, want €275.00", got)
	}
	if len(inv.PaymentInstructions) != 1 {
		t.Errorf("payment lines = %v, want blank line dropped", inv.PaymentInstructions)
	}
	if inv.PaymentCode == nil || inv.PaymentCode.Symbology != model.QR {
		t.Errorf("PaymentCode = %+v", inv.PaymentCode)
	}
	if got := strings.Join(inv.Recipient.ContactBlock, "|"); got != "ap@widget.test|555-0199" {
		t.Errorf("ContactBlock = %q", got)
	}
	if inv.NotesPosition != model.NotesBelow {
		t.Errorf("NotesPosition = %q", inv.NotesPosition)
	}
	th := inv.Theme
	if th.Accent != "#0B4C8C" || th.Mode != palette.Filled || th.Paper != model.A4 || th.Orientation != model.Landscape {
		t.Errorf("Theme = %+v", th)
	}
}

func TestLenientValues(t *testing.T) {
	doc, err := Parse([]byte(`{
		"invoice": {"issueDate": "yesterday", "currency": "DOLLARS"},
		"items": [{"description": "x", "quantity": "lots", "rate": "1,250.50"}],
		"theme": {"accent": "not-a-colour", "mode": "sparkly"}
	}`))
	if err != nil {
		t.Fatalf("lenient document failed to parse: %v", err)
	}
	inv, err := doc.Invoice()
	if err != nil {
		t.Fatal(err)
	}
	if !inv.Meta.IssueDate.IsZero() {
		t.Error("unparseable date should be zero")
	}
	if inv.Meta.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", inv.Meta.Currency)
	}
	if !inv.Items[0].Quantity.IsZero() {
		t.Errorf("Quantity = %s, want 0", inv.Items[0].Quantity)
	}
	if got := inv.Items[0].Rate.StringFixed(2); got != "1250.50" {
		t.Errorf("Rate = %s, want 1250.50", got)
	}
	if inv.Theme.Accent != "#111111" || inv.Theme.Mode != palette.Outline {
		t.Errorf("Theme = %+v", inv.Theme)
	}
}

func TestLegacyInvoiceNumber(t *testing.T) {
	doc, err := Parse([]byte(`{"invoice": {"invoiceNumber": "IN-ABC-12"}}`))
	if err != nil {
		t.Fatal(err)
	}
	inv, _ := doc.Invoice()
	if inv.Meta.Abbrev != "ABC" || inv.Meta.Sequence != "12" {
		t.Fatalf("Meta = %+v", inv.Meta)
	}

	doc.Meta.InvoiceNumber = "DRAFT"
	inv, _ = doc.Invoice()
	if got := inv.Meta.InvoiceNumber(); got != "DRAFT" {
		t.Fatalf("InvoiceNumber() = %q, want DRAFT", got)
	}
}

func TestAbbreviationFromRecipient(t *testing.T) {
	doc := Document{Recipient: Party{Company: "The Linux Foundation"}}
	inv, err := doc.Invoice()
	if err != nil {
		t.Fatal(err)
	}
	if got := inv.Meta.InvoiceNumber(); got != "IN-L-01" {
		t.Fatalf("InvoiceNumber() = %q, want IN-L-01", got)
	}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLogoSources(t *testing.T) {
	data := testPNG(t)

	doc := Document{Logo: &Logo{Data: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)}}
	inv, err := doc.Invoice()
	if err != nil {
		t.Fatalf("data logo: %v", err)
	}
	if inv.Logo == nil || inv.Logo.Width != 40 || inv.Logo.Height != 20 {
		t.Fatalf("Logo = %+v", inv.Logo)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	src := []byte(`{"sender": {"name": "Acme"}, "logo": {"src": "logo.png"}}`)
	path := filepath.Join(dir, "invoice.json")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if inv, err = loaded.Invoice(); err != nil || inv.Logo == nil {
		t.Fatalf("file logo: %v %+v", err, inv.Logo)
	}

	bad := Document{Logo: &Logo{Data: "!!!"}}
	if _, err := bad.Invoice(); !errors.Is(err, ErrLogo) {
		t.Fatalf("undecodable logo: got %v, want ErrLogo", err)
	}
}

func TestParseUntrustedRejectsLogoFiles(t *testing.T) {
	data := testPNG(t)
	path := filepath.Join(t.TempDir(), "secret.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := ParseUntrusted([]byte(`{"sender": {"name": "Acme"}, "logo": {"src": "` + path + `"}}`))
	if err != nil {
		t.Fatalf("ParseUntrusted failed: %v", err)
	}
	if _, err := doc.Invoice(); !errors.Is(err, ErrLogoSource) {
		t.Fatalf("src logo: got %v, want ErrLogoSource", err)
	}

	// Missing files are refused the same way, so callers cannot probe paths.
	doc, _ = ParseUntrusted([]byte(`{"logo": {"src": "/no/such/file.png"}}`))
	if _, err := doc.Invoice(); !errors.Is(err, ErrLogoSource) {
		t.Fatalf("missing src logo: got %v, want ErrLogoSource", err)
	}

	inline := `{"logo": {"data": "` + base64.StdEncoding.EncodeToString(data) + `"}}`
	doc, _ = ParseUntrusted([]byte(inline))
	inv, err := doc.Invoice()
	if err != nil || inv.Logo == nil {
		t.Fatalf("inline logo: %v %+v", err, inv.Logo)
	}
}

func TestDescriptionPolicyOption(t *testing.T) {
	long := strings.Repeat("revisions to the brand system ", 8)
	doc := Document{
		DescriptionPolicy: "wrap",
		Items:             []Item{{Description: long, Quantity: NewAmount(1), Rate: NewAmount(10)}},
	}
	inv, err := doc.Invoice()
	if err != nil {
		t.Fatal(err)
	}
	plan, err := invoicepdf.Plan(inv, doc.Options()...)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Policy != layout.Wrap || len(plan.Rows[0].Description) < 2 {
		t.Fatalf("policy %v produced %d lines", plan.Policy, len(plan.Rows[0].Description))
	}
}

func TestRenderLayoutError(t *testing.T) {
	lines := make([]string, 80)
	for i := range lines {
		lines[i] = "line"
	}
	b, _ := json.Marshal(map[string]any{
		"items":               []map[string]any{{"description": "x", "quantity": 1, "rate": 1}},
		"paymentInstructions": lines,
	})
	var buf bytes.Buffer
	err := Render(&buf, b)
	if !errors.Is(err, invoicepdf.ErrLayoutImpossible) {
		t.Fatalf("expected ErrLayoutImpossible, got %v", err)
	}
}

func TestRenderInvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, []byte(`{invalid`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
