// Package pdfdraw executes draw commands on a gofpdf document.
//
// Text is drawn with the PDF core fonts (Helvetica and Courier) through the
// same cp1252 translation that measure.CoreFonts uses, so a plan computed
// with CoreFonts wraps exactly where this backend draws.
package pdfdraw

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/palette"
)

// ErrEmptyDocument is returned for a document without pages.
var ErrEmptyDocument = errors.New("pdfdraw: document has no pages")

// PDF417 encoder settings for payment codes.
const (
	pdf417Columns  = 8
	pdf417Security = 2
)

var dash = []float64{1, 1}

// Options controls document-level output.
type Options struct {
	// Letterhead is a PDF whose first page is drawn under every page.
	Letterhead []byte
	// CreatedAt fixes the document dates for reproducible output. The
	// current time is used when zero.
	CreatedAt time.Time
	Author    string
}

type executor struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images map[uint32]string
	codes  map[string]string
}

// Write renders doc as a PDF to w. Nothing is written when rendering fails.
func Write(w io.Writer, doc *draw.Document, opts Options) error {
	pdf, err := Build(doc, opts)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdfdraw: output: %w", err)
	}
	return nil
}

// Build renders doc into a gofpdf document without writing it.
func Build(doc *draw.Document, opts Options) (*gofpdf.Fpdf, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, ErrEmptyDocument
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Invoice "+doc.Number, true)
	pdf.SetCreator("invoicepdf", true)
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	if !opts.CreatedAt.IsZero() {
		pdf.SetCreationDate(opts.CreatedAt)
		pdf.SetModificationDate(opts.CreatedAt)
	}

	e := &executor{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: map[uint32]string{},
		codes:  map[string]string{},
	}

	var lh *letterhead
	if len(opts.Letterhead) > 0 {
		var err error
		if lh, err = importLetterhead(pdf, opts.Letterhead); err != nil {
			return nil, err
		}
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for i, cmd := range page.Commands {
			e.exec(cmd)
			// The letterhead sits on the paper fill, below everything else.
			if i == 0 && lh != nil {
				lh.draw(pdf, doc.Width, doc.Height)
			}
		}
		if doc.Stamp != nil {
			e.stamp(*doc.Stamp, doc.Width, doc.Height)
		}
		if pdf.Err() {
			return nil, fmt.Errorf("pdfdraw: page %d: %w", page.Number, pdf.Error())
		}
	}
	return pdf, nil
}

func (e *executor) exec(cmd draw.Command) {
	switch c := cmd.(type) {
	case draw.FillRect:
		e.fill(c.Color)
		e.pdf.Rect(c.X, c.Y, c.W, c.H, "F")
	case draw.StrokeRect:
		e.stroke(c.Color, c.LineWidth, false)
		e.pdf.Rect(c.X, c.Y, c.W, c.H, "D")
	case draw.Line:
		e.stroke(c.Color, c.LineWidth, c.Dashed)
		e.pdf.Line(c.X1, c.Y1, c.X2, c.Y2)
	case draw.Text:
		e.text(c)
	case draw.Image:
		e.image(c)
	case draw.Code:
		e.code(c)
	}
}

func (e *executor) fill(c palette.Color) {
	e.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func (e *executor) stroke(c palette.Color, width float64, dashed bool) {
	e.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	e.pdf.SetLineWidth(width)
	if dashed {
		e.pdf.SetDashPattern(dash, 0)
	} else {
		e.pdf.SetDashPattern(nil, 0)
	}
}

func (e *executor) setFont(f draw.Font) {
	e.pdf.SetFont(f.Family.CoreName(), f.Style(), f.Size)
}

func (e *executor) text(t draw.Text) {
	e.setFont(t.Font)
	e.pdf.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))
	s := e.tr(t.Content)
	x := t.X
	switch t.Align {
	case draw.Center:
		x -= e.pdf.GetStringWidth(s) / 2
	case draw.Right:
		x -= e.pdf.GetStringWidth(s)
	}
	e.pdf.Text(x, t.Y, s)
}

func (e *executor) image(img draw.Image) {
	if len(img.Data) == 0 {
		return
	}
	sum := crc32.ChecksumIEEE(img.Data)
	opts := gofpdf.ImageOptions{ImageType: img.Format}
	name, ok := e.images[sum]
	if !ok {
		name = fmt.Sprintf("logo-%08x", sum)
		e.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
		e.images[sum] = name
	}
	e.pdf.ImageOptions(name, img.X, img.Y, img.W, img.H, false, opts, 0, "")
}

func (e *executor) code(c draw.Code) {
	key := c.Symbology + ":" + c.Payload
	reg, ok := e.codes[key]
	if !ok {
		if c.Symbology == "pdf417" {
			reg = barcode.RegisterPdf417(e.pdf, c.Payload, pdf417Columns, pdf417Security)
		} else {
			reg = barcode.RegisterQR(e.pdf, c.Payload, qr.M, qr.Auto)
		}
		e.codes[key] = reg
	}
	barcode.Barcode(e.pdf, reg, c.X, c.Y, c.W, c.H, false)
}
