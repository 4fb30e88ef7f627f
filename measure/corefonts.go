package measure

import (
	"fmt"
	"sync"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/invoicepdf/draw"
)

// CoreFonts measures with the AFM metrics of the PDF base-14 fonts, the same
// tables the PDF backend draws with. Text is translated to cp1252 first, as
// the backend does before drawing.
type CoreFonts struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// NewCoreFonts returns a measurer backed by a scratch gofpdf document.
func NewCoreFonts() *CoreFonts {
	c := &CoreFonts{}
	c.reset()
	return c
}

func (c *CoreFonts) reset() {
	c.pdf = gofpdf.New("P", "mm", "A4", "")
	c.tr = c.pdf.UnicodeTranslatorFromDescriptor("")
}

// Width implements Measurer.
func (c *CoreFonts) Width(text string, f draw.Font) (float64, error) {
	if c == nil {
		return 0, ErrUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pdf == nil {
		return 0, ErrUnavailable
	}
	c.pdf.SetFont(f.Family.CoreName(), f.Style(), f.Size)
	w := c.pdf.GetStringWidth(c.tr(text))
	if c.pdf.Err() {
		err := c.pdf.Error()
		c.reset()
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return w, nil
}

// Translate converts UTF-8 text to the encoding used by the core fonts.
func (c *CoreFonts) Translate(text string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr(text)
}
