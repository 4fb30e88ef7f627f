// Command invoicepdf renders invoice documents written in JSON or YAML.
//
//	invoicepdf render invoice.yaml            # writes invoice-IN-ABC-07.pdf
//	invoicepdf preview --page 2 invoice.yaml  # writes invoice-IN-ABC-07.png
//	invoicepdf plan invoice.yaml              # prints the layout summary
//	invoicepdf palette --mode filled '#0B4C8C'
//	invoicepdf template save --name acme invoice.yaml
//	invoicepdf serve                          # HTTP service on :8080
//	invoicepdf mcp                            # MCP server on stdio
//
// Settings come from --config and INVOICEPDF_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lvillar/invoicepdf/internal/config"
	"github.com/lvillar/invoicepdf/internal/httpapi"
	"github.com/lvillar/invoicepdf/logging"
	"github.com/lvillar/invoicepdf/mcp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "invoicepdf: %v\n", err)
		os.Exit(1)
	}
}

// env is the state shared by every command, built in Before.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func fromContext(c *cli.Context) *env {
	return c.App.Metadata["env"].(*env)
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoicepdf",
		Usage: "lay out and render paginated invoices",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "configuration file (YAML, JSON or TOML)", EnvVars: []string{"INVOICEPDF_CONFIG"}},
			&cli.StringFlag{Name: "log-level", Usage: "override log.level"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if lvl := c.String("log-level"); lvl != "" {
				cfg.Log.Level = lvl
			}
			logger, err := cfg.Log.NewLogger(c.App.ErrWriter)
			if err != nil {
				return err
			}
			logging.SetLogger(logger)
			if c.App.Metadata == nil {
				c.App.Metadata = map[string]any{}
			}
			c.App.Metadata["env"] = &env{cfg: cfg, logger: logger}
			return nil
		},
		Commands: []*cli.Command{
			renderCommand(),
			previewCommand(),
			planCommand(),
			paletteCommand(),
			templateCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "override http.port"},
		},
		Action: func(c *cli.Context) error {
			e := fromContext(c)
			opts, err := e.cfg.Render.Options()
			if err != nil {
				return err
			}
			port := e.cfg.HTTP.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv := &http.Server{
				Addr:              ":" + strconv.Itoa(port),
				Handler:           httpapi.NewRouter(e.cfg, e.logger, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				e.logger.Info("http server listening", "addr", srv.Addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return err
			case <-c.Context.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "run the MCP server on stdin and stdout",
		Action: func(c *cli.Context) error {
			opts, err := fromContext(c).cfg.Render.Options()
			if err != nil {
				return err
			}
			server := mcp.NewServer()
			mcp.RegisterDefaultTools(server, opts...)
			mcp.RegisterDefaultResources(server)
			return server.Run(c.Context)
		},
	}
}
