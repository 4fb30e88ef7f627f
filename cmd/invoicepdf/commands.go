package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/lvillar/invoicepdf"
	"github.com/lvillar/invoicepdf/doctpl"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/palette"
)

var outputFlag = &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file, - for stdout"}

// loadDocument reads the document named by the first argument, or stdin
// when it is "-", and applies the configured defaults.
func loadDocument(c *cli.Context) (*doctpl.Document, error) {
	path := c.Args().First()
	if path == "" {
		return nil, errors.New("missing invoice document argument")
	}
	var (
		doc *doctpl.Document
		err error
	)
	if path == "-" {
		var data []byte
		if data, err = io.ReadAll(c.App.Reader); err != nil {
			return nil, err
		}
		doc, err = doctpl.Parse(data)
	} else {
		doc, err = doctpl.Load(path)
	}
	if err != nil {
		return nil, err
	}

	if tpl := c.String("template"); tpl != "" {
		data, err := os.ReadFile(tpl)
		if err != nil {
			return nil, err
		}
		t, err := doctpl.ParseTemplate(data)
		if err != nil {
			return nil, err
		}
		merged := t.Apply(*doc)
		doc = &merged
	}
	fromContext(c).cfg.Render.ApplyDefaults(doc)
	return doc, nil
}

// writeOutput writes data to the --output flag, falling back to name in
// the current directory.
func writeOutput(c *cli.Context, name string, data []byte) error {
	out := c.String("output")
	if out == "-" {
		_, err := c.App.Writer.Write(data)
		return err
	}
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(c.App.ErrWriter, out)
	return nil
}

// explain adds the layout context to a layout failure.
func explain(err error) error {
	var lerr *layout.LayoutError
	if errors.As(err, &lerr) {
		return fmt.Errorf("%w\n  column widths: %v\n  try fewer payment lines, shorter notes or landscape orientation",
			err, lerr.ColumnWidths)
	}
	return err
}

var templateFlag = &cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "saved template merged over the document"}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "render an invoice document to PDF",
		ArgsUsage: "<invoice.yaml|invoice.json|->",
		Flags: []cli.Flag{
			outputFlag,
			templateFlag,
			&cli.BoolFlag{Name: "stamp", Usage: "draw the status as a diagonal stamp"},
		},
		Action: func(c *cli.Context) error {
			doc, err := loadDocument(c)
			if err != nil {
				return err
			}
			opts, err := fromContext(c).cfg.Render.Options()
			if err != nil {
				return err
			}
			if c.IsSet("stamp") {
				opts = append(opts, invoicepdf.WithStatusStamp(c.Bool("stamp")))
			}

			var buf bytes.Buffer
			res, err := doctpl.RenderDocument(c.Context, &buf, doc, opts...)
			if err != nil {
				return explain(err)
			}
			return writeOutput(c, res.Filename, buf.Bytes())
		},
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "render one page of an invoice document to PNG",
		ArgsUsage: "<invoice.yaml|invoice.json|->",
		Flags: []cli.Flag{
			outputFlag,
			templateFlag,
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "page number (1-based)"},
			&cli.Float64Flag{Name: "dpi", Usage: "override render.preview_dpi"},
		},
		Action: func(c *cli.Context) error {
			doc, err := loadDocument(c)
			if err != nil {
				return err
			}
			inv, err := doc.Invoice()
			if err != nil {
				return err
			}
			opts, err := fromContext(c).cfg.Render.Options()
			if err != nil {
				return err
			}
			opts = append(opts, doc.Options()...)
			if c.IsSet("dpi") {
				opts = append(opts, invoicepdf.WithDPI(c.Float64("dpi")))
			}

			var buf bytes.Buffer
			res, err := invoicepdf.Preview(c.Context, &buf, inv, c.Int("page"), opts...)
			if err != nil {
				return explain(err)
			}
			name := res.Filename
			if res.Pages > 1 {
				name = strings.TrimSuffix(name, ".png") + fmt.Sprintf("-p%d.png", c.Int("page"))
			}
			return writeOutput(c, name, buf.Bytes())
		},
	}
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "print the page layout of an invoice document as JSON",
		ArgsUsage: "<invoice.yaml|invoice.json|->",
		Flags:     []cli.Flag{templateFlag},
		Action: func(c *cli.Context) error {
			doc, err := loadDocument(c)
			if err != nil {
				return err
			}
			inv, err := doc.Invoice()
			if err != nil {
				return err
			}
			plan, err := invoicepdf.Plan(inv, doc.Options()...)
			if err != nil {
				return explain(err)
			}
			return printJSON(c.App.Writer, map[string]any{
				"number":  plan.Header.NumberText(),
				"summary": plan.Summary(),
			})
		},
	}
}

func paletteCommand() *cli.Command {
	return &cli.Command{
		Name:      "palette",
		Usage:     "print the colours derived from an accent colour",
		ArgsUsage: "<#RRGGBB|preset>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "outline", Usage: "outline, filled or terminal"},
		},
		Action: func(c *cli.Context) error {
			accent := c.Args().First()
			if p, ok := palette.Presets[strings.ToLower(accent)]; ok {
				accent = p.Hex()
			} else if _, err := palette.ParseHex(accent); err != nil {
				return err
			}
			mode, ok := palette.ParseMode(c.String("mode"))
			if !ok {
				return fmt.Errorf("unknown mode %q", c.String("mode"))
			}
			return printJSON(c.App.Writer, palette.Derive(accent, mode))
		},
	}
}

func templateCommand() *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "save and apply invoice templates",
		Subcommands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "save an invoice document as a template",
				ArgsUsage: "<invoice.yaml|invoice.json>",
				Flags: []cli.Flag{
					outputFlag,
					&cli.StringFlag{Name: "name", Usage: "template name, defaults to the file name"},
					&cli.BoolFlag{Name: "items", Usage: "keep the line items"},
				},
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					doc, err := doctpl.Load(path)
					if err != nil {
						return err
					}
					name := c.String("name")
					if name == "" {
						name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
					}
					data, err := yaml.Marshal(doctpl.NewTemplate(name, *doc, c.Bool("items")))
					if err != nil {
						return err
					}
					return writeOutput(c, name+".template.yaml", data)
				},
			},
			{
				Name:      "apply",
				Usage:     "merge a template into an invoice document and print the result",
				ArgsUsage: "<template.yaml> [invoice.yaml]",
				Action: func(c *cli.Context) error {
					data, err := os.ReadFile(c.Args().Get(0))
					if err != nil {
						return err
					}
					tpl, err := doctpl.ParseTemplate(data)
					if err != nil {
						return err
					}
					var doc doctpl.Document
					if path := c.Args().Get(1); path != "" {
						d, err := doctpl.Load(path)
						if err != nil {
							return err
						}
						doc = *d
					}
					out, err := yaml.Marshal(tpl.Apply(doc))
					if err != nil {
						return err
					}
					_, err = c.App.Writer.Write(out)
					return err
				},
			},
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
