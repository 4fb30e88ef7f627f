// Package invoicepdf lays out invoices over fixed-size pages and exports
// them as PDF documents or PNG page previews.
//
// An export runs in stages: the invoice is normalized, a layout plan is
// computed with the measurer of the target backend, the plan is rendered
// into draw commands and the commands are executed by the backend. Nothing
// is written to the destination until the whole document has been built.
//
// Example:
//
//	f, _ := os.Create("invoice.pdf")
//	defer f.Close()
//	res, err := invoicepdf.Export(ctx, f, inv)
//	var lerr *layout.LayoutError
//	if errors.As(err, &lerr) {
//	    // reduce the number of line items or switch to landscape
//	}
package invoicepdf

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/logging"
	"github.com/lvillar/invoicepdf/measure"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/pdfdraw"
	"github.com/lvillar/invoicepdf/rasterdraw"
	"github.com/lvillar/invoicepdf/render"
)

// Result describes an exported file.
type Result struct {
	Filename string
	Pages    int
	Summary  layout.Summary
}

// Export writes inv to w as a PDF.
func Export(ctx context.Context, w io.Writer, inv model.Invoice, opts ...Option) (*Result, error) {
	if w == nil {
		return nil, newExportError("export", ErrInvalidParam)
	}
	cfg := newConfig(opts)
	if cfg.measurer == nil {
		cfg.measurer = measure.Memoize(measure.NewCoreFonts())
	}
	doc, plan, norm, err := build(ctx, inv, cfg)
	if err != nil {
		return nil, err
	}

	created := cfg.createdAt
	if created.IsZero() {
		created = norm.Meta.IssueDate.Time()
	}
	pdfOpts := pdfdraw.Options{
		Letterhead: cfg.letterhead,
		CreatedAt:  created,
		Author:     norm.Sender.Name,
	}
	pdf, err := pdfdraw.Build(doc, pdfOpts)
	if err != nil {
		return nil, newExportError("pdf", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, newExportError("pdf", err)
	}
	if err := pdf.Output(w); err != nil {
		return nil, newExportError("write", err)
	}

	res := result(doc, plan, "pdf")
	logging.Logger().Info("invoice exported",
		"number", doc.Number,
		"file", res.Filename,
		"pages", res.Pages,
	)
	return res, nil
}

// Preview writes page n (1-based) of inv to w as a PNG image. The plan is
// computed with the preview's own font metrics.
func Preview(ctx context.Context, w io.Writer, inv model.Invoice, page int, opts ...Option) (*Result, error) {
	if w == nil || page < 1 {
		return nil, newExportError("preview", ErrInvalidParam)
	}
	cfg := newConfig(opts)
	raster, err := rasterdraw.New(cfg.dpi)
	if err != nil {
		return nil, newExportError("preview", err)
	}
	if cfg.measurer == nil {
		ot, err := measure.NewOpenType()
		if err != nil {
			return nil, newExportError("preview", err)
		}
		cfg.measurer = ot
	}
	doc, plan, _, err := build(ctx, inv, cfg)
	if err != nil {
		return nil, err
	}
	if page > len(doc.Pages) {
		return nil, newExportError("preview", ErrInvalidParam)
	}

	var buf bytes.Buffer
	if err := raster.WritePNG(&buf, doc, page); err != nil {
		return nil, newExportError("preview", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return nil, newExportError("write", err)
	}
	return result(doc, plan, "png"), nil
}

// Plan computes the layout of inv without drawing it.
func Plan(inv model.Invoice, opts ...Option) (*layout.Plan, error) {
	cfg := newConfig(opts)
	if cfg.measurer == nil {
		cfg.measurer = measure.NewCoreFonts()
	}
	plan, err := layout.New(cfg.theme(inv), layout.Options{Measurer: cfg.measurer, Policy: cfg.policy})
	if err != nil {
		return nil, newExportError("plan", err)
	}
	return plan, nil
}

// Render computes the draw commands of inv as the PDF backend would draw
// them.
func Render(ctx context.Context, inv model.Invoice, opts ...Option) (*draw.Document, error) {
	cfg := newConfig(opts)
	if cfg.measurer == nil {
		cfg.measurer = measure.NewCoreFonts()
	}
	doc, _, _, err := build(ctx, inv, cfg)
	return doc, err
}

func build(ctx context.Context, inv model.Invoice, cfg *exportConfig) (*draw.Document, *layout.Plan, model.Invoice, error) {
	norm := model.Normalize(cfg.theme(inv))
	if err := ctx.Err(); err != nil {
		return nil, nil, norm, newExportError("plan", err)
	}

	start := time.Now()
	plan, err := layout.New(norm, layout.Options{Measurer: cfg.measurer, Policy: cfg.policy})
	if err != nil {
		logging.Logger().Warn("invoice layout failed", "number", norm.Meta.InvoiceNumber(), "error", err)
		return nil, nil, norm, newExportError("plan", err)
	}
	logging.Logger().Debug("invoice planned",
		"number", plan.Header.Number,
		"items", len(plan.Rows),
		"pages", plan.TotalPages(),
		"maxRowsFirstPage", plan.MaxRowsFirst,
		"maxRowsContinuationPage", plan.MaxRowsContinuation,
		"elapsed", time.Since(start),
	)
	if err := ctx.Err(); err != nil {
		return nil, nil, norm, newExportError("render", err)
	}

	pal := norm.Palette()
	doc, err := render.Render(plan, norm, pal)
	if err != nil {
		return nil, nil, norm, newExportError("render", err)
	}
	if cfg.stamp && norm.Meta.Status != "" {
		doc.Stamp = &draw.Stamp{Text: strings.ToUpper(norm.Meta.Status), Color: pal.Ink}
	}
	return doc, plan, norm, nil
}

func (c *exportConfig) theme(inv model.Invoice) model.Invoice {
	if c.accent != "" {
		inv.Theme.Accent = c.accent
	}
	if c.mode != nil {
		inv.Theme.Mode = *c.mode
	}
	return inv
}

func result(doc *draw.Document, plan *layout.Plan, ext string) *Result {
	return &Result{
		Filename: doc.Filename(ext),
		Pages:    len(doc.Pages),
		Summary:  plan.Summary(),
	}
}
