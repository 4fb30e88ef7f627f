// Package config loads invoicepdf settings from defaults, an optional
// configuration file and INVOICEPDF_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/lvillar/invoicepdf"
	"github.com/lvillar/invoicepdf/doctpl"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/logging"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
)

// Config aggregates application settings.
type Config struct {
	Render RenderConfig `mapstructure:"render"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Log    LogConfig    `mapstructure:"log"`
}

// RenderConfig holds defaults applied to documents that leave a field empty,
// plus export options that documents cannot set.
type RenderConfig struct {
	Paper             string  `mapstructure:"paper"`
	Orientation       string  `mapstructure:"orientation"`
	Mode              string  `mapstructure:"mode"`
	Accent            string  `mapstructure:"accent"`
	DescriptionPolicy string  `mapstructure:"description_policy"`
	Letterhead        string  `mapstructure:"letterhead"` // path to a stationery PDF
	StampStatus       bool    `mapstructure:"stamp_status"`
	PreviewDPI        float64 `mapstructure:"preview_dpi"`
}

// HTTPConfig contains HTTP server settings.
type HTTPConfig struct {
	Port        int   `mapstructure:"port"`
	MaxBodySize int64 `mapstructure:"max_body_size"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Load reads configuration from environment variables and, when path is
// not empty, from the given YAML, JSON or TOML file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("render.paper", string(model.Letter))
	v.SetDefault("render.orientation", string(model.Portrait))
	v.SetDefault("render.mode", "outline")
	v.SetDefault("render.accent", "")
	v.SetDefault("render.description_policy", "truncate")
	v.SetDefault("render.letterhead", "")
	v.SetDefault("render.stamp_status", false)
	v.SetDefault("render.preview_dpi", 96)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.max_body_size", 8<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"render.paper":              "INVOICEPDF_PAPER",
		"render.orientation":        "INVOICEPDF_ORIENTATION",
		"render.mode":               "INVOICEPDF_MODE",
		"render.accent":             "INVOICEPDF_ACCENT",
		"render.description_policy": "INVOICEPDF_DESCRIPTION_POLICY",
		"render.letterhead":         "INVOICEPDF_LETTERHEAD",
		"render.stamp_status":       "INVOICEPDF_STAMP_STATUS",
		"render.preview_dpi":        "INVOICEPDF_PREVIEW_DPI",
		"http.port":                 "INVOICEPDF_HTTP_PORT",
		"http.max_body_size":        "INVOICEPDF_HTTP_MAX_BODY_SIZE",
		"log.level":                 "INVOICEPDF_LOG_LEVEL",
		"log.format":                "INVOICEPDF_LOG_FORMAT",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

func validate(cfg Config) error {
	r := cfg.Render
	switch model.PaperSize(strings.ToLower(r.Paper)) {
	case model.Letter, model.A4, model.Legal:
	default:
		return fmt.Errorf("render paper %q must be letter, a4 or legal", r.Paper)
	}
	switch model.Orientation(strings.ToLower(r.Orientation)) {
	case model.Portrait, model.Landscape:
	default:
		return fmt.Errorf("render orientation %q must be portrait or landscape", r.Orientation)
	}
	if _, ok := palette.ParseMode(r.Mode); !ok {
		return fmt.Errorf("render mode %q is not supported", r.Mode)
	}
	if r.Accent != "" {
		if _, err := palette.ParseHex(r.Accent); err != nil {
			if _, ok := palette.Presets[strings.ToLower(r.Accent)]; !ok {
				return fmt.Errorf("render accent %q is neither a colour nor a preset", r.Accent)
			}
		}
	}
	if _, err := layout.ParseDescriptionPolicy(r.DescriptionPolicy); err != nil {
		return err
	}
	if r.PreviewDPI <= 0 {
		return errors.New("render preview_dpi must be positive")
	}
	if cfg.HTTP.Port <= 0 {
		return errors.New("http port must be positive")
	}
	if cfg.HTTP.MaxBodySize <= 0 {
		return errors.New("http max_body_size must be positive")
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q must be text or json", cfg.Log.Format)
	}
	return nil
}

// ApplyDefaults fills the theme and description policy of doc where the
// document leaves them empty.
func (r RenderConfig) ApplyDefaults(doc *doctpl.Document) {
	t := &doc.Theme
	if t.Paper == "" {
		t.Paper = r.Paper
	}
	if t.Orientation == "" {
		t.Orientation = r.Orientation
	}
	if t.Mode == "" {
		t.Mode = r.Mode
	}
	if t.Accent == "" && t.Preset == "" && r.Accent != "" {
		if _, ok := palette.Presets[strings.ToLower(r.Accent)]; ok {
			t.Preset = r.Accent
		} else {
			t.Accent = r.Accent
		}
	}
	if doc.DescriptionPolicy == "" {
		doc.DescriptionPolicy = r.DescriptionPolicy
	}
}

// Options returns the export options that only the configuration can set.
// The letterhead file is read here so that a bad path fails at startup.
func (r RenderConfig) Options() ([]invoicepdf.Option, error) {
	opts := []invoicepdf.Option{
		invoicepdf.WithStatusStamp(r.StampStatus),
		invoicepdf.WithDPI(r.PreviewDPI),
	}
	if r.Letterhead != "" {
		data, err := os.ReadFile(r.Letterhead)
		if err != nil {
			return nil, fmt.Errorf("read letterhead: %w", err)
		}
		opts = append(opts, invoicepdf.WithLetterhead(data))
	}
	return opts, nil
}

// NewLogger builds the slog logger the configuration asks for.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
