package model

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// PaperSize names a supported sheet.
type PaperSize string

const (
	Letter PaperSize = "letter"
	A4     PaperSize = "a4"
	Legal  PaperSize = "legal"
)

// Orientation of the sheet.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

var paperDims = map[PaperSize][2]float64{
	Letter: {215.9, 279.4},
	A4:     {210, 297},
	Legal:  {215.9, 355.6},
}

func (p PaperSize) normalize() PaperSize {
	p = PaperSize(strings.ToLower(strings.TrimSpace(string(p))))
	if _, ok := paperDims[p]; !ok {
		return Letter
	}
	return p
}

// PaperSizes lists the supported sheets in a stable order.
func PaperSizes() []PaperSize {
	return []PaperSize{Letter, A4, Legal}
}

// Dimensions returns the page width and height in millimetres. Unknown
// sizes are treated as letter.
func (p PaperSize) Dimensions(o Orientation) (w, h float64) {
	d := paperDims[p.normalize()]
	if o == Landscape {
		return d[1], d[0]
	}
	return d[0], d[1]
}

// PageSize is Dimensions for the invoice theme.
func (t Theme) PageSize() (w, h float64) {
	return t.Paper.Dimensions(t.Orientation)
}

// Logo is an embedded raster image shown in the page-1 header.
type Logo struct {
	Data   []byte
	Format string // "png", "jpeg" or "gif"
	Width  int    // natural pixel size
	Height int
}

// NewLogo decodes the image header to record the format and natural size.
func NewLogo(data []byte) (*Logo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Logo{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Fit scales the logo into a maxW x maxH box keeping its aspect ratio.
func (l *Logo) Fit(maxW, maxH float64) (w, h float64) {
	if l == nil || l.Width <= 0 || l.Height <= 0 {
		return 0, 0
	}
	ratio := float64(l.Width) / float64(l.Height)
	w, h = maxW, maxW/ratio
	if h > maxH {
		h = maxH
		w = maxH * ratio
	}
	return w, h
}
