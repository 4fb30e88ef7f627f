package mcp

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
)

// RegisterDefaultResources adds the reference resources to the server.
// Resources use the invoice:// scheme.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         "invoice://paper-sizes",
		Name:        "Paper Sizes",
		Description: "Supported paper sizes with their page dimensions in millimetres, portrait and landscape.",
		MIMEType:    "application/json",
		Handler:     handlePaperSizesResource,
	})

	s.AddResource(Resource{
		URI:         "invoice://presets",
		Name:        "Accent Presets",
		Description: "Named accent colours accepted by theme.preset and the derived palette of each in every mode.",
		MIMEType:    "application/json",
		Handler:     handlePresetsResource,
	})
}

type paperSize struct {
	Name      string     `json:"name"`
	Portrait  [2]float64 `json:"portrait"`
	Landscape [2]float64 `json:"landscape"`
}

func handlePaperSizesResource(uri string) ([]ResourceContent, error) {
	var sizes []paperSize
	for _, p := range model.PaperSizes() {
		pw, ph := p.Dimensions(model.Portrait)
		lw, lh := p.Dimensions(model.Landscape)
		sizes = append(sizes, paperSize{
			Name:      string(p),
			Portrait:  [2]float64{pw, ph},
			Landscape: [2]float64{lw, lh},
		})
	}
	return jsonContent(uri, sizes)
}

type preset struct {
	Name     string                     `json:"name"`
	Accent   string                     `json:"accent"`
	Palettes map[string]palette.Palette `json:"palettes"`
}

func handlePresetsResource(uri string) ([]ResourceContent, error) {
	names := make([]string, 0, len(palette.Presets))
	for name := range palette.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	presets := make([]preset, 0, len(names))
	for _, name := range names {
		c := palette.Presets[name]
		p := preset{Name: name, Accent: c.Hex(), Palettes: map[string]palette.Palette{}}
		for _, m := range []palette.Mode{palette.Outline, palette.Filled, palette.Terminal} {
			p.Palettes[m.String()] = palette.DeriveColor(c, m)
		}
		presets = append(presets, p)
	}
	return jsonContent(uri, presets)
}

func jsonContent(uri string, v any) ([]ResourceContent, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(b),
	}}, nil
}
