// Package rasterdraw executes draw commands into images for page previews.
//
// Text is drawn with the Go fonts through measure.OpenType, so previews
// should be planned with an OpenType measurer.
package rasterdraw

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/pdf417"
	"github.com/boombuler/barcode/qr"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/lvillar/invoicepdf/draw"
	"github.com/lvillar/invoicepdf/measure"
	"github.com/lvillar/invoicepdf/palette"
)

// DefaultDPI is the preview resolution when none is given.
const DefaultDPI = 96

// ErrPageRange is returned for a page number outside the document.
var ErrPageRange = errors.New("rasterdraw: page out of range")

const mmPerInch = 25.4

// Renderer rasterizes pages. Faces are not safe for concurrent use, so a
// Renderer draws one page at a time.
type Renderer struct {
	mu    sync.Mutex
	fonts *measure.OpenType
	dpi   float64
}

// New returns a Renderer drawing at dpi. A non-positive dpi selects
// DefaultDPI.
func New(dpi float64) (*Renderer, error) {
	fonts, err := measure.NewOpenType()
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{fonts: fonts, dpi: dpi}, nil
}

// DPI returns the resolution of rendered pages.
func (r *Renderer) DPI() float64 { return r.dpi }

// WritePNG renders page n (1-based) of doc as PNG.
func (r *Renderer) WritePNG(w io.Writer, doc *draw.Document, n int) error {
	img, err := r.Page(doc, n)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("rasterdraw: encode: %w", err)
	}
	return nil
}

// Page renders page n (1-based) of doc.
func (r *Renderer) Page(doc *draw.Document, n int) (*image.RGBA, error) {
	if doc == nil || n < 1 || n > len(doc.Pages) {
		return nil, ErrPageRange
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &canvas{
		r:     r,
		scale: r.dpi / mmPerInch,
	}
	c.img = image.NewRGBA(image.Rect(0, 0, c.px(doc.Width), c.px(doc.Height)))
	stddraw.Draw(c.img, c.img.Bounds(), image.White, image.Point{}, stddraw.Src)

	for _, cmd := range doc.Pages[n-1].Commands {
		if err := c.exec(cmd); err != nil {
			return nil, fmt.Errorf("rasterdraw: page %d: %w", n, err)
		}
	}
	if doc.Stamp != nil {
		if err := c.stamp(*doc.Stamp, doc.Width, doc.Height); err != nil {
			return nil, fmt.Errorf("rasterdraw: page %d: %w", n, err)
		}
	}
	return c.img, nil
}

type canvas struct {
	r     *Renderer
	img   *image.RGBA
	scale float64 // pixels per millimetre
}

func (c *canvas) px(mm float64) int { return int(math.Round(mm * c.scale)) }

func (c *canvas) rect(x, y, w, h float64) image.Rectangle {
	return image.Rect(c.px(x), c.px(y), c.px(x+w), c.px(y+h))
}

func rgba(p palette.Color) color.RGBA { return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff} }

func (c *canvas) exec(cmd draw.Command) error {
	switch v := cmd.(type) {
	case draw.FillRect:
		stddraw.Draw(c.img, c.rect(v.X, v.Y, v.W, v.H), image.NewUniform(rgba(v.Color)), image.Point{}, stddraw.Src)
	case draw.StrokeRect:
		l := draw.Line{Color: v.Color, LineWidth: v.LineWidth}
		c.line(withEnds(l, v.X, v.Y, v.X+v.W, v.Y))
		c.line(withEnds(l, v.X, v.Y+v.H, v.X+v.W, v.Y+v.H))
		c.line(withEnds(l, v.X, v.Y, v.X, v.Y+v.H))
		c.line(withEnds(l, v.X+v.W, v.Y, v.X+v.W, v.Y+v.H))
	case draw.Line:
		c.line(v)
	case draw.Text:
		return c.text(v)
	case draw.Image:
		return c.image(v)
	case draw.Code:
		return c.code(v)
	}
	return nil
}

func withEnds(l draw.Line, x1, y1, x2, y2 float64) draw.Line {
	l.X1, l.Y1, l.X2, l.Y2 = x1, y1, x2, y2
	return l
}

// line steps along the segment stamping squares of the stroke width.
// Dashes alternate 1mm on and 1mm off, as in the PDF backend.
func (c *canvas) line(l draw.Line) {
	src := image.NewUniform(rgba(l.Color))
	thick := math.Max(1, math.Round(l.LineWidth*c.scale))
	dx, dy := (l.X2-l.X1)*c.scale, (l.Y2-l.Y1)*c.scale
	length := math.Hypot(dx, dy)
	steps := int(math.Ceil(length)) + 1
	dashPx := c.scale
	for i := 0; i < steps; i++ {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		if l.Dashed && int(t*length/dashPx)%2 == 1 {
			continue
		}
		x := l.X1*c.scale + t*dx
		y := l.Y1*c.scale + t*dy
		x0, y0 := int(math.Round(x-thick/2)), int(math.Round(y-thick/2))
		r := image.Rect(x0, y0, x0+int(thick), y0+int(thick))
		stddraw.Draw(c.img, r, src, image.Point{}, stddraw.Src)
	}
}

func (c *canvas) text(t draw.Text) error {
	if t.Content == "" {
		return nil
	}
	face, err := c.r.fonts.Face(t.Font, c.r.dpi)
	if err != nil {
		return err
	}
	c.drawString(face, t.Content, t.X, t.Y, t.Align, image.NewUniform(rgba(t.Color)))
	return nil
}

func (c *canvas) drawString(face font.Face, s string, x, y float64, a draw.Align, src image.Image) {
	px := x * c.scale
	w := float64(font.MeasureString(face, s)) / 64
	switch a {
	case draw.Center:
		px -= w / 2
	case draw.Right:
		px -= w
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(px * 64), Y: fixed.Int26_6(y * c.scale * 64)},
	}
	d.DrawString(s)
}

func (c *canvas) image(img draw.Image) error {
	if len(img.Data) == 0 {
		return nil
	}
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("logo: %w", err)
	}
	xdraw.CatmullRom.Scale(c.img, c.rect(img.X, img.Y, img.W, img.H), src, src.Bounds(), xdraw.Over, nil)
	return nil
}

func (c *canvas) code(v draw.Code) error {
	var (
		bc  barcode.Barcode
		err error
	)
	if v.Symbology == "pdf417" {
		bc, err = pdf417.Encode(v.Payload, 2)
	} else {
		bc, err = qr.Encode(v.Payload, qr.M, qr.Auto)
	}
	if err != nil {
		return fmt.Errorf("payment code: %w", err)
	}
	// Modules stay crisp with nearest-neighbour scaling.
	xdraw.NearestNeighbor.Scale(c.img, c.rect(v.X, v.Y, v.W, v.H), bc, bc.Bounds(), xdraw.Src, nil)
	return nil
}

// stamp draws the status label unrotated at the page centre; previews only
// need to show that a stamp is present.
func (c *canvas) stamp(s draw.Stamp, pageW, pageH float64) error {
	if s.Text == "" {
		return nil
	}
	face, err := c.r.fonts.Face(draw.Font{Family: draw.Sans, Bold: true, Size: 60}, c.r.dpi)
	if err != nil {
		return err
	}
	col := color.NRGBA{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: 0x33}
	c.drawString(face, s.Text, pageW/2, pageH/2, draw.Center, image.NewUniform(col))
	return nil
}
