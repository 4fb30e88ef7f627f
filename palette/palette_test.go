package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Color
		wantErr bool
	}{
		{name: "six digits", in: "#CEFF00", want: Color{0xCE, 0xFF, 0x00}},
		{name: "no hash", in: "0b4c8c", want: Color{0x0B, 0x4C, 0x8C}},
		{name: "three digits", in: "#fa0", want: Color{0xFF, 0xAA, 0x00}},
		{name: "padded", in: "  #111111 ", want: NearBlack},
		{name: "five digits", in: "#12345", wantErr: true},
		{name: "not hex", in: "#GGGGGG", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, Fallback, MustHex(tt.in))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLuminanceAndContrast(t *testing.T) {
	assert.InDelta(t, 1.0, White.Luminance(), 1e-9)
	assert.InDelta(t, 0.0, Black.Luminance(), 1e-9)
	assert.InDelta(t, 21.0, Contrast(White, Black), 1e-9)
	assert.InDelta(t, Contrast(White, NearBlack), Contrast(NearBlack, White), 1e-12)
}

func TestOutlineTextOnAccentMeetsContrast(t *testing.T) {
	accents := []string{"#CEFF00", "#0B4C8C", "#111111", "#D45500", "#7B2CBF", "#DC2626", "#FFFFFF", "#777777"}
	for _, a := range accents {
		t.Run(a, func(t *testing.T) {
			p := Derive(a, Outline)
			assert.Equal(t, White, p.Paper)
			assert.False(t, p.ShowFill)
			assert.Equal(t, NearBlack, p.Text)
			if p.TextOnAccent == White {
				assert.GreaterOrEqual(t, Contrast(p.Accent, White), 4.5)
			} else {
				assert.Equal(t, Black, p.TextOnAccent)
				assert.Less(t, Contrast(p.Accent, White), 4.5)
			}
		})
	}
}

func TestFilledNeon(t *testing.T) {
	p := Derive("#CEFF00", Filled)
	accent := Color{0xCE, 0xFF, 0x00}

	assert.Equal(t, accent, p.Paper)
	assert.Equal(t, NearBlack, p.Ink)
	// Bright accent: outside text is pushed toward black but keeps the hue.
	assert.Equal(t, Color{0x29, 0x33, 0x00}, p.Text)
	assert.NotEqual(t, Black, p.Text)
	assert.NotEqual(t, White, p.Text)
	assert.Equal(t, accent.Lighten(0.6), p.Fill)
	assert.NotEqual(t, p.Paper, p.Fill)
	assert.Equal(t, accent.Lighten(0.85), p.TableFill)
	assert.Equal(t, NearBlack, p.TextOnFill)
	assert.True(t, p.ShowFill)
}

func TestFilledDarkAccentLightensText(t *testing.T) {
	p := Derive("#0B4C8C", Filled)
	assert.Equal(t, Color{0x0B, 0x4C, 0x8C}.Lighten(0.8), p.Text)
	assert.Greater(t, p.Text.Luminance(), p.Paper.Luminance())
}

func TestTerminal(t *testing.T) {
	p := Derive("#33FF66", Terminal)
	accent := MustHex("#33FF66")
	assert.Equal(t, Black, p.Paper)
	assert.Equal(t, accent, p.Text)
	assert.Equal(t, accent, p.Ink)
	assert.Equal(t, accent, p.TextOnTable)
	assert.False(t, p.ShowFill)
	assert.True(t, p.Monochrome)
}

func TestDeriveIsDeterministic(t *testing.T) {
	for _, m := range []Mode{Outline, Filled, Terminal} {
		assert.Equal(t, Derive("#7B2CBF", m), Derive("#7B2CBF", m))
	}
}

func TestDeriveMalformedFallsBack(t *testing.T) {
	p := Derive("not-a-colour", Filled)
	assert.Equal(t, Fallback, p.Accent)
	assert.Equal(t, Fallback, p.Paper)
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"outline":       Outline,
		"FILLED":        Filled,
		"ascii":         Terminal,
		"asciiTerminal": Terminal,
		"":              Outline,
	}
	for in, want := range tests {
		got, ok := ParseMode(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	got, ok := ParseMode("neon")
	assert.False(t, ok)
	assert.Equal(t, Outline, got)
}
