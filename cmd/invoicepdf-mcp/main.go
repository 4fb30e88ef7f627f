// Command invoicepdf-mcp is an MCP (Model Context Protocol) server that lets
// AI assistants plan and render invoices.
//
// # Installation
//
//	go install github.com/lvillar/invoicepdf/cmd/invoicepdf-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "invoicepdf": {
//	      "command": "invoicepdf-mcp",
//	      "env": {"INVOICEPDF_PAPER": "a4"}
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - render_invoice: Render an invoice document to PDF
//   - preview_invoice: Render one page to PNG
//   - plan_invoice: Compute the page layout without rendering
//   - derive_palette: Colours for an accent and a mode
//   - invoice_number: Build or split IN-ABBREV-SEQ numbers
//   - apply_template: Merge a saved template into a document
//
// # Available Resources
//
//   - invoice://paper-sizes : Supported sheets and their dimensions
//   - invoice://presets : Named accent colours and their palettes
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/invoicepdf/internal/config"
	"github.com/lvillar/invoicepdf/logging"
	"github.com/lvillar/invoicepdf/mcp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "invoicepdf-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("INVOICEPDF_CONFIG"))
	if err != nil {
		return err
	}
	// stdout carries the protocol, so logs go to stderr.
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	logging.SetLogger(logger)

	opts, err := cfg.Render.Options()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer()
	mcp.RegisterDefaultTools(server, opts...)
	mcp.RegisterDefaultResources(server)
	return server.Run(ctx)
}
