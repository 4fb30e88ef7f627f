package palette

// Palette is the resolved set of colours for one render.
type Palette struct {
	Mode   Mode  `json:"mode"`
	Accent Color `json:"accent"` // the input accent after parsing

	Paper Color `json:"paper"` // full-bleed page background
	Ink   Color `json:"ink"`   // borders and rules

	Text  Color `json:"text"`  // body text drawn directly on paper
	Title Color `json:"title"` // INVOICE heading and continuation header

	Fill        Color `json:"fill"`      // info boxes, table header, footer boxes
	TableFill   Color `json:"tableFill"` // line-item rows
	TextOnFill  Color `json:"textOnFill"`
	TextOnTable Color `json:"textOnTable"`

	// TextOnAccent is used for anything painted on a solid accent background.
	TextOnAccent Color `json:"textOnAccent"`

	// Flags replace per-mode code paths in the renderer.
	ShowFill    bool `json:"showFill"`
	ShowBorders bool `json:"showBorders"`
	Dividers    bool `json:"dividers"`   // thin rule beneath section titles
	Monochrome  bool `json:"monochrome"` // terminal rendering: monospace font, ASCII ornaments
}

// ReadableOn picks white when it reaches 4.5:1 against bg and black otherwise.
func ReadableOn(bg Color) Color {
	if Contrast(bg, White) >= 4.5 {
		return White
	}
	return Black
}

// InvertLightness returns a same-hue colour on the opposite end of the
// lightness scale: 80% toward white for dark inputs, 80% toward black for
// light inputs.
func InvertLightness(c Color) Color {
	if c.Luminance() < 0.5 {
		return c.Lighten(0.8)
	}
	return c.Darken(0.8)
}

// Derive computes the palette for accentHex in mode. A malformed accent is
// replaced by Fallback; Derive never fails.
func Derive(accentHex string, mode Mode) Palette {
	return DeriveColor(MustHex(accentHex), mode)
}

// DeriveColor is Derive for an already parsed accent.
func DeriveColor(accent Color, mode Mode) Palette {
	switch mode {
	case Filled:
		outside := InvertLightness(accent)
		return Palette{
			Mode:         Filled,
			Accent:       accent,
			Paper:        accent,
			Ink:          NearBlack,
			Text:         outside,
			Title:        outside,
			Fill:         accent.Lighten(0.6),
			TableFill:    accent.Lighten(0.85),
			TextOnFill:   NearBlack,
			TextOnTable:  NearBlack,
			TextOnAccent: NearBlack,
			ShowFill:     true,
			ShowBorders:  true,
		}
	case Terminal:
		return Palette{
			Mode:         Terminal,
			Accent:       accent,
			Paper:        Black,
			Ink:          accent,
			Text:         accent,
			Title:        accent,
			Fill:         Black,
			TableFill:    Black,
			TextOnFill:   accent,
			TextOnTable:  accent,
			TextOnAccent: Black,
			ShowBorders:  true,
			Dividers:     true,
			Monochrome:   true,
		}
	default:
		return Palette{
			Mode:         Outline,
			Accent:       accent,
			Paper:        White,
			Ink:          accent,
			Text:         NearBlack,
			Title:        accent,
			Fill:         White,
			TableFill:    White,
			TextOnFill:   NearBlack,
			TextOnTable:  NearBlack,
			TextOnAccent: ReadableOn(accent),
			ShowBorders:  true,
		}
	}
}
