// Package draw defines the backend-neutral page description produced by the
// renderer.
//
// A Document is an ordered list of pages, each an ordered list of absolutely
// positioned commands in millimetres with the origin at the top-left corner.
// Backends execute the commands in order and make no layout decisions of
// their own.
package draw

import (
	"fmt"
	"strings"

	"github.com/lvillar/invoicepdf/palette"
)

// Align anchors a text run horizontally. Center and Right anchor to X,
// independent of the text length.
type Align int

const (
	Left Align = iota
	Center
	Right
)

func (a Align) String() string {
	switch a {
	case Center:
		return "C"
	case Right:
		return "R"
	}
	return "L"
}

// Family selects a typeface.
type Family int

const (
	Sans Family = iota
	Mono
)

// CoreName is the PDF base-14 font name for the family.
func (f Family) CoreName() string {
	if f == Mono {
		return "Courier"
	}
	return "Helvetica"
}

// Font is a typeface, weight and size in points.
type Font struct {
	Family Family
	Bold   bool
	Size   float64
}

// Style returns the gofpdf style string.
func (f Font) Style() string {
	if f.Bold {
		return "B"
	}
	return ""
}

func (f Font) String() string {
	return fmt.Sprintf("%s%s/%g", f.Family.CoreName(), f.Style(), f.Size)
}

// Command is one draw primitive.
type Command interface {
	command()
}

// FillRect paints a solid rectangle.
type FillRect struct {
	X, Y, W, H float64
	Color      palette.Color
}

// StrokeRect outlines a rectangle.
type StrokeRect struct {
	X, Y, W, H float64
	Color      palette.Color
	LineWidth  float64
}

// Line draws a straight segment. Dashed lines use a 1mm on/off pattern.
type Line struct {
	X1, Y1, X2, Y2 float64
	Color          palette.Color
	LineWidth      float64
	Dashed         bool
}

// Text draws a single run with its baseline at Y.
type Text struct {
	Content string
	X, Y    float64
	Align   Align
	Font    Font
	Color   palette.Color
}

// Image places an encoded raster image into a box.
type Image struct {
	X, Y, W, H float64
	Data       []byte
	Format     string
}

// Code draws a two-dimensional barcode into a box.
type Code struct {
	X, Y, W, H float64
	Payload    string
	Symbology  string // "qr" or "pdf417"
}

func (FillRect) command()   {}
func (StrokeRect) command() {}
func (Line) command()       {}
func (Text) command()       {}
func (Image) command()      {}
func (Code) command()       {}

// Page is one sheet of commands.
type Page struct {
	Number   int // 1-based
	Commands []Command
}

// Add appends commands to the page.
func (p *Page) Add(cmds ...Command) {
	p.Commands = append(p.Commands, cmds...)
}

// Texts returns the content of every text command, in draw order.
func (p Page) Texts() []string {
	var out []string
	for _, c := range p.Commands {
		if t, ok := c.(Text); ok {
			out = append(out, t.Content)
		}
	}
	return out
}

// Stamp is a large translucent diagonal label drawn over every page.
type Stamp struct {
	Text  string
	Color palette.Color
}

// Document is the complete render output.
type Document struct {
	Number string
	Width  float64
	Height float64
	Pages  []Page

	// Stamp is optional. Backends draw it after the page commands.
	Stamp *Stamp
}

// Filename returns invoice-{number}.{ext}. Path separators in the number
// are replaced so the result is always a single file name.
func (d Document) Filename(ext string) string {
	n := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, strings.TrimSpace(d.Number))
	if n == "" {
		n = "draft"
	}
	return "invoice-" + n + "." + strings.TrimPrefix(ext, ".")
}
