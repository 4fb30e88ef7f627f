// Package palette derives the colours used to draw an invoice from a single
// accent colour and a style mode.
//
// Three modes are supported. Outline draws accent-coloured borders on white
// paper with no fills. Filled paints the whole page in the accent colour and
// uses lightened variants of it for boxes and table rows. Terminal renders
// monochrome accent text and borders on black paper.
package palette

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Mode selects the visual theme.
type Mode int

const (
	Outline Mode = iota
	Filled
	Terminal
)

// String returns the mode name used in documents and configuration.
func (m Mode) String() string {
	switch m {
	case Outline:
		return "outline"
	case Filled:
		return "filled"
	case Terminal:
		return "ascii"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name. "ascii", "asciiTerminal" and "terminal" all
// select Terminal. Unknown names fall back to Outline and return false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "outline":
		return Outline, true
	case "filled", "fill", "datasheet":
		return Filled, true
	case "ascii", "asciiterminal", "terminal":
		return Terminal, true
	}
	return Outline, false
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode
// to Outline rather than failing.
func (m *Mode) UnmarshalText(b []byte) error {
	*m, _ = ParseMode(string(b))
	return nil
}

// Color is an sRGB colour.
type Color struct {
	R, G, B uint8
}

var (
	White     = Color{0xFF, 0xFF, 0xFF}
	Black     = Color{0x00, 0x00, 0x00}
	NearBlack = Color{0x11, 0x11, 0x11}

	// Fallback replaces any accent that cannot be parsed.
	Fallback = NearBlack
)

// Presets are the named accent swatches offered by the invoice form.
var Presets = map[string]Color{
	"technical": {0x11, 0x11, 0x11},
	"blueprint": {0x0B, 0x4C, 0x8C},
	"neon":      {0xCE, 0xFF, 0x00},
	"orange":    {0xD4, 0x55, 0x00},
	"purple":    {0x7B, 0x2C, 0xBF},
	"red":       {0xDC, 0x26, 0x26},
}

// ParseHex parses "#RRGGBB", "RRGGBB", "#RGB" or "RGB".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("palette: invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("palette: invalid hex colour %q", s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustHex is ParseHex that substitutes Fallback on error.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		return Fallback
	}
	return c
}

// Hex returns the colour as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Malformed values decode
// to Fallback.
func (c *Color) UnmarshalText(b []byte) error {
	*c = MustHex(string(b))
	return nil
}

// Luminance returns the WCAG relative luminance of c.
func (c Color) Luminance() float64 {
	lin := func(v uint8) float64 {
		s := float64(v) / 255
		if s <= 0.03928 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// Contrast returns the WCAG contrast ratio between a and b.
func Contrast(a, b Color) float64 {
	l1, l2 := a.Luminance(), b.Luminance()
	return (math.Max(l1, l2) + 0.05) / (math.Min(l1, l2) + 0.05)
}

// Mix moves each channel of c the given fraction of the way toward target.
func (c Color) Mix(target Color, amount float64) Color {
	ch := func(from, to uint8) uint8 {
		v := math.Round(float64(from) + (float64(to)-float64(from))*amount)
		return uint8(math.Max(0, math.Min(255, v)))
	}
	return Color{R: ch(c.R, target.R), G: ch(c.G, target.G), B: ch(c.B, target.B)}
}

// Lighten blends c toward white.
func (c Color) Lighten(amount float64) Color { return c.Mix(White, amount) }

// Darken blends c toward black.
func (c Color) Darken(amount float64) Color { return c.Mix(Black, amount) }
