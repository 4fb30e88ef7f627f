package invoicepdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/logging"
	"github.com/lvillar/invoicepdf/measure"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
)

func sampleInvoice(items int) model.Invoice {
	inv := model.Invoice{
		Sender:    model.Sender{Name: "Acme Studio", Phone: "555-0100", Address: "1 Main St"},
		Recipient: model.Recipient{Company: "Widget Co", ContactNames: "Jo Doe"},
		Meta: model.Meta{
			Abbrev:    "WC",
			Sequence:  "07",
			IssueDate: model.ParseDate("2024-03-01"),
			DueDate:   model.ParseDate("2024-03-31"),
			Currency:  "USD",
			Status:    "paid",
		},
		PaymentInstructions: []string{"Bank transfer to account 0001"},
		Theme:               model.Theme{Accent: "#0B4C8C", Paper: model.Letter},
	}
	for i := 0; i < items; i++ {
		inv.Items = append(inv.Items, model.NewLineItem("", fmt.Sprintf("Item %d", i+1), 1, 10))
	}
	return inv
}

type brokenMeasurer struct{}

func (brokenMeasurer) Width(string, draw.Font) (float64, error) { return 0, measure.ErrUnavailable }

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	res, err := Export(context.Background(), &buf, sampleInvoice(3))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, "invoice-IN-WC-07.pdf", res.Filename)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 3, res.Summary.TotalItems)
}

func TestExportMultiPage(t *testing.T) {
	var buf bytes.Buffer
	res, err := Export(context.Background(), &buf, sampleInvoice(80))
	require.NoError(t, err)
	assert.Greater(t, res.Pages, 1)
	assert.Len(t, res.Summary.Pages, res.Pages)

	placed := 0
	for _, p := range res.Summary.Pages {
		placed += p.Items
	}
	assert.Equal(t, 80, placed)
}

func TestExportIsReproducible(t *testing.T) {
	var a, b bytes.Buffer
	_, err := Export(context.Background(), &a, sampleInvoice(20))
	require.NoError(t, err)
	_, err = Export(context.Background(), &b, sampleInvoice(20))
	require.NoError(t, err)
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestExportLayoutImpossible(t *testing.T) {
	inv := sampleInvoice(5)
	inv.PaymentInstructions = nil
	for i := 0; i < 60; i++ {
		inv.PaymentInstructions = append(inv.PaymentInstructions, fmt.Sprintf("Instruction %d", i))
	}

	var buf bytes.Buffer
	_, err := Export(context.Background(), &buf, inv)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLayoutImpossible))

	var lerr *layout.LayoutError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, "line items", lerr.Section)
	assert.InDelta(t, 215.9, lerr.PageWidth, 1e-9)
	assert.Len(t, lerr.ColumnWidths, 4)

	var eerr *ExportError
	require.True(t, errors.As(err, &eerr))
	assert.Equal(t, "plan", eerr.Op)
	assert.Zero(t, buf.Len(), "nothing is written on failure")
}

func TestExportBackendUnavailable(t *testing.T) {
	var buf bytes.Buffer
	_, err := Export(context.Background(), &buf, sampleInvoice(1), WithMeasurer(brokenMeasurer{}))
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
	assert.Zero(t, buf.Len())
}

func TestExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	_, err := Export(ctx, &buf, sampleInvoice(1))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, buf.Len())
}

func TestExportInvalidParam(t *testing.T) {
	_, err := Export(context.Background(), nil, sampleInvoice(1))
	assert.True(t, errors.Is(err, ErrInvalidParam))
}

func TestExportLogs(t *testing.T) {
	var logs bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { logging.SetLogger(nil) })

	_, err := Export(context.Background(), &bytes.Buffer{}, sampleInvoice(2))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "invoice planned")
	assert.Contains(t, logs.String(), "invoice exported")
	assert.Contains(t, logs.String(), "file=invoice-IN-WC-07.pdf")
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	res, err := Preview(context.Background(), &buf, sampleInvoice(3), 1, WithDPI(96))
	require.NoError(t, err)
	assert.Equal(t, "invoice-IN-WC-07.png", res.Filename)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 816, img.Bounds().Dx())
	assert.Equal(t, 1056, img.Bounds().Dy())
}

func TestPreviewPageRange(t *testing.T) {
	var buf bytes.Buffer
	_, err := Preview(context.Background(), &buf, sampleInvoice(3), 2)
	assert.True(t, errors.Is(err, ErrInvalidParam))
	_, err = Preview(context.Background(), &buf, sampleInvoice(3), 0)
	assert.True(t, errors.Is(err, ErrInvalidParam))
	assert.Zero(t, buf.Len())
}

func TestRenderOptions(t *testing.T) {
	doc, err := Render(context.Background(), sampleInvoice(2),
		WithStatusStamp(true),
		WithTheme("#CEFF00", palette.Terminal),
	)
	require.NoError(t, err)
	require.NotNil(t, doc.Stamp)
	assert.Equal(t, "PAID", doc.Stamp.Text)
	assert.Equal(t, palette.MustHex("#CEFF00"), doc.Stamp.Color)
	assert.Contains(t, doc.Pages[0].Texts(), ">>> INVOICE NO: IN-WC-07 <<<")

	doc, err = Render(context.Background(), sampleInvoice(2))
	require.NoError(t, err)
	assert.Nil(t, doc.Stamp)
}

func TestPlanWrapPolicy(t *testing.T) {
	inv := sampleInvoice(0)
	long := "Design work across several review rounds including revisions to the logo, the palette and the typography system"
	inv.Items = []model.LineItem{model.NewLineItem("", long, 1, 100)}

	truncated, err := Plan(inv)
	require.NoError(t, err)
	wrapped, err := Plan(inv, WithDescriptionPolicy(layout.Wrap))
	require.NoError(t, err)

	assert.Len(t, truncated.Rows[0].Description, 1)
	assert.Greater(t, len(wrapped.Rows[0].Description), 1)
	assert.Greater(t, wrapped.Rows[0].Height, truncated.Rows[0].Height)
}
