package invoicepdf

import (
	"time"

	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/measure"
	"github.com/lvillar/invoicepdf/palette"
)

// Option is a functional option for configuring an export.
type Option func(*exportConfig)

type exportConfig struct {
	measurer   measure.Measurer
	policy     layout.DescriptionPolicy
	letterhead []byte
	stamp      bool
	createdAt  time.Time
	dpi        float64
	mode       *palette.Mode
	accent     string
}

// WithMeasurer overrides the text measurer used for planning. It must
// match the fonts of the backend that draws the result.
func WithMeasurer(m measure.Measurer) Option {
	return func(c *exportConfig) {
		c.measurer = m
	}
}

// WithDescriptionPolicy selects whether long descriptions are truncated to
// one line (the default) or wrapped onto taller rows.
func WithDescriptionPolicy(p layout.DescriptionPolicy) Option {
	return func(c *exportConfig) {
		c.policy = p
	}
}

// WithLetterhead draws the first page of a stationery PDF under every page.
// Ignored by previews.
func WithLetterhead(pdf []byte) Option {
	return func(c *exportConfig) {
		c.letterhead = pdf
	}
}

// WithStatusStamp draws the invoice status diagonally across every page.
func WithStatusStamp(on bool) Option {
	return func(c *exportConfig) {
		c.stamp = on
	}
}

// WithCreationDate fixes the PDF creation date. The issue date is used when
// unset, which keeps repeated exports byte-identical.
func WithCreationDate(t time.Time) Option {
	return func(c *exportConfig) {
		c.createdAt = t
	}
}

// WithDPI sets the preview resolution.
func WithDPI(dpi float64) Option {
	return func(c *exportConfig) {
		c.dpi = dpi
	}
}

// WithTheme overrides the invoice's accent colour and style mode. An empty
// accent keeps the invoice's own.
func WithTheme(accent string, mode palette.Mode) Option {
	return func(c *exportConfig) {
		c.accent = accent
		c.mode = &mode
	}
}

func newConfig(opts []Option) *exportConfig {
	cfg := &exportConfig{policy: layout.Truncate}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
