package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lvillar/invoicepdf"
	"github.com/lvillar/invoicepdf/doctpl"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
)

// RegisterDefaultTools adds all built-in invoice tools to the server. opts
// are applied to every render before the per-call arguments.
func RegisterDefaultTools(s *Server, opts ...invoicepdf.Option) {
	s.AddTool(renderInvoiceTool(opts))
	s.AddTool(previewInvoiceTool(opts))
	s.AddTool(planInvoiceTool(opts))
	s.AddTool(derivePaletteTool())
	s.AddTool(invoiceNumberTool())
	s.AddTool(applyTemplateTool())
}

var documentSchema = map[string]any{
	"description": "Invoice document as a JSON object, or JSON/YAML text. Fields: sender, recipient, invoice " +
		"(abbrev, sequence, issueDate, dueDate, currency, status), items (type, description, quantity, rate), " +
		"paymentInstructions, paymentCode, notes, notesPosition, theme (accent, preset, mode, paper, orientation), " +
		"logo, descriptionPolicy.",
}

func renderInvoiceTool(base []invoicepdf.Option) Tool {
	return Tool{
		Name:        "render_invoice",
		Description: "Render an invoice document as a paginated PDF. Returns the PDF as base64 or saves it to outputPath.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"document": documentSchema,
				"outputPath": map[string]any{
					"type":        "string",
					"description": "Optional file path to save the PDF. If omitted, returns base64.",
				},
				"statusStamp": map[string]any{
					"type":        "boolean",
					"description": "Draw the invoice status as a diagonal stamp on every page.",
				},
			},
			"required": []string{"document"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			doc, err := documentArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			opts := append([]invoicepdf.Option(nil), base...)
			if stamp, ok := args["statusStamp"].(bool); ok {
				opts = append(opts, invoicepdf.WithStatusStamp(stamp))
			}

			var buf bytes.Buffer
			res, err := doctpl.RenderDocument(ctx, &buf, doc, opts...)
			if err != nil {
				return layoutFailure(err)
			}

			if path, ok := args["outputPath"].(string); ok && path != "" {
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return ToolResult{}, fmt.Errorf("writing file: %w", err)
				}
				return textResult(fmt.Sprintf("Invoice rendered: %s (%d pages, %d bytes)", path, res.Pages, buf.Len())), nil
			}
			return textResult(fmt.Sprintf("Invoice rendered: %s (%d pages, %d bytes). Base64 data:\n%s",
				res.Filename, res.Pages, buf.Len(), base64.StdEncoding.EncodeToString(buf.Bytes()))), nil
		},
	}
}

func previewInvoiceTool(base []invoicepdf.Option) Tool {
	return Tool{
		Name:        "preview_invoice",
		Description: "Render one page of an invoice document as a PNG image.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"document": documentSchema,
				"page": map[string]any{
					"type":        "number",
					"description": "Page number (1-based). Defaults to 1.",
				},
				"dpi": map[string]any{
					"type":        "number",
					"description": "Resolution of the image. Defaults to 96.",
				},
			},
			"required": []string{"document"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			doc, err := documentArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			inv, err := doc.Invoice()
			if err != nil {
				return ToolResult{}, err
			}
			page := 1
			if p, ok := args["page"].(float64); ok {
				page = int(p)
			}
			opts := append(append([]invoicepdf.Option(nil), base...), doc.Options()...)
			if dpi, ok := args["dpi"].(float64); ok && dpi > 0 {
				opts = append(opts, invoicepdf.WithDPI(dpi))
			}

			var buf bytes.Buffer
			res, err := invoicepdf.Preview(ctx, &buf, inv, page, opts...)
			if err != nil {
				return layoutFailure(err)
			}
			return ToolResult{Content: []ContentBlock{
				{Type: "text", Text: fmt.Sprintf("Page %d of %d (%s)", page, res.Pages, res.Filename)},
				{Type: "image", MIMEType: "image/png", Data: base64.StdEncoding.EncodeToString(buf.Bytes())},
			}}, nil
		},
	}
}

func planInvoiceTool(base []invoicepdf.Option) Tool {
	return Tool{
		Name: "plan_invoice",
		Description: "Compute the page layout of an invoice document without rendering it: column widths, " +
			"rows per page and the items placed on each page. Use it to check that an invoice fits.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"document": documentSchema,
			},
			"required": []string{"document"},
		},
		Handler: func(ctx context.Context, args map[string]any) (ToolResult, error) {
			doc, err := documentArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			inv, err := doc.Invoice()
			if err != nil {
				return ToolResult{}, err
			}
			plan, err := invoicepdf.Plan(inv, append(append([]invoicepdf.Option(nil), base...), doc.Options()...)...)
			if err != nil {
				return layoutFailure(err)
			}
			return jsonResult(map[string]any{
				"number":  plan.Header.NumberText(),
				"summary": plan.Summary(),
			})
		},
	}
}

func derivePaletteTool() Tool {
	return Tool{
		Name:        "derive_palette",
		Description: "Derive the invoice colours for an accent colour and a display mode (outline, filled, terminal).",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"accent": map[string]any{
					"type":        "string",
					"description": "Accent colour as #RRGGBB, or a preset name.",
				},
				"mode": map[string]any{
					"type": "string",
					"enum": []string{"outline", "filled", "terminal"},
				},
			},
			"required": []string{"accent"},
		},
		Handler: func(_ context.Context, args map[string]any) (ToolResult, error) {
			accent, _ := args["accent"].(string)
			if c, ok := palette.Presets[accent]; ok {
				accent = c.Hex()
			}
			modeName, _ := args["mode"].(string)
			mode, ok := palette.ParseMode(modeName)
			if !ok {
				return ToolResult{}, fmt.Errorf("unknown mode %q", modeName)
			}
			return jsonResult(palette.Derive(accent, mode))
		},
	}
}

func invoiceNumberTool() Tool {
	return Tool{
		Name: "invoice_number",
		Description: "Build an invoice number IN-{ABBREV}-{SEQ}. The abbreviation is derived from the company " +
			"name when not given. An existing number can be passed to split it into its parts.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"company":  map[string]any{"type": "string"},
				"abbrev":   map[string]any{"type": "string"},
				"sequence": map[string]any{"type": "string"},
				"number": map[string]any{
					"type":        "string",
					"description": "Existing number such as IN-ABC-07 to split.",
				},
			},
		},
		Handler: func(_ context.Context, args map[string]any) (ToolResult, error) {
			str := func(k string) string { s, _ := args[k].(string); return s }

			m := model.Meta{Abbrev: str("abbrev"), Sequence: str("sequence")}
			if n := str("number"); n != "" {
				abbrev, seq, ok := model.SplitNumber(n)
				if !ok {
					return ToolResult{}, fmt.Errorf("%q is not an IN-ABBREV-SEQ number", n)
				}
				m.Abbrev, m.Sequence = abbrev, seq
			}
			if m.Abbrev == "" {
				m.Abbrev = model.Abbreviate(str("company"))
			}
			return jsonResult(map[string]string{
				"abbrev":   m.Abbrev,
				"sequence": m.Sequence,
				"number":   m.InvoiceNumber(),
			})
		},
	}
}

func applyTemplateTool() Tool {
	return Tool{
		Name:        "apply_template",
		Description: "Load a saved invoice template into a document. Fields set in the template replace those of the document.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"template": map[string]any{
					"description": "Template object or JSON/YAML text: a document plus name and saveLineItems.",
				},
				"document": documentSchema,
			},
			"required": []string{"template"},
		},
		Handler: func(_ context.Context, args map[string]any) (ToolResult, error) {
			raw, err := rawArg(args, "template")
			if err != nil {
				return ToolResult{}, err
			}
			tpl, err := doctpl.ParseTemplate(raw)
			if err != nil {
				return ToolResult{}, err
			}
			var doc doctpl.Document
			if _, ok := args["document"]; ok {
				d, err := documentArg(args)
				if err != nil {
					return ToolResult{}, err
				}
				doc = *d
			}
			return jsonResult(tpl.Apply(doc))
		},
	}
}

func documentArg(args map[string]any) (*doctpl.Document, error) {
	raw, err := rawArg(args, "document")
	if err != nil {
		return nil, err
	}
	return doctpl.Parse(raw)
}

// rawArg accepts an object argument or a string holding JSON or YAML.
func rawArg(args map[string]any, name string) ([]byte, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing '%s' argument", name)
	}
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return b, nil
}

// layoutFailure turns a layout error into a tool result the assistant can
// act on. Other errors are returned unchanged.
func layoutFailure(err error) (ToolResult, error) {
	var lerr *layout.LayoutError
	if !errors.As(err, &lerr) {
		return ToolResult{}, err
	}
	res, jerr := jsonResult(map[string]any{
		"error":   lerr.Error(),
		"details": lerr,
	})
	if jerr != nil {
		return ToolResult{}, err
	}
	res.IsError = true
	return res, nil
}

func textResult(s string) ToolResult {
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: s}}}
}

func jsonResult(v any) (ToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(string(b)), nil
}
