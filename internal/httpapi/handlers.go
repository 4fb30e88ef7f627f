// Package httpapi serves invoice exports over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lvillar/invoicepdf"
	"github.com/lvillar/invoicepdf/doctpl"
	"github.com/lvillar/invoicepdf/internal/config"
	"github.com/lvillar/invoicepdf/internal/metrics"
	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/model"
	"github.com/lvillar/invoicepdf/palette"
)

const defaultMaxBody = 8 << 20

// Handler exports invoice documents posted as JSON or YAML.
type Handler struct {
	render  config.RenderConfig
	opts    []invoicepdf.Option
	maxBody int64
}

// NewHandler builds a handler. opts are applied to every export.
func NewHandler(cfg *config.Config, opts ...invoicepdf.Option) *Handler {
	h := &Handler{render: cfg.Render, opts: opts, maxBody: cfg.HTTP.MaxBodySize}
	if h.maxBody <= 0 {
		h.maxBody = defaultMaxBody
	}
	return h
}

// NewRouter returns a gin engine with every route registered.
func NewRouter(cfg *config.Config, logger *slog.Logger, opts ...invoicepdf.Option) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CorrelationID(), RequestLogger(logger), metrics.GinMiddleware())
	RegisterRoutes(router, NewHandler(cfg, opts...))
	return router
}

// RegisterRoutes registers the API routes.
func RegisterRoutes(router *gin.Engine, h *Handler) {
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1")
	{
		invoices := v1.Group("/invoices")
		{
			invoices.POST("/pdf", h.RenderPDF)
			invoices.POST("/preview", h.RenderPreview)
			invoices.POST("/plan", h.Plan)
		}
		v1.GET("/palette", h.Palette)
	}
}

// RenderPDF responds with the PDF as an attachment named after the invoice.
func (h *Handler) RenderPDF(c *gin.Context) {
	doc, inv, ok := h.invoice(c)
	if !ok {
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	res, err := invoicepdf.Export(c.Request.Context(), &buf, inv, append(doc.Options(), h.opts...)...)
	metrics.ObserveExport("pdf", pages(res), time.Since(start), err)
	if err != nil {
		h.exportFailed(c, err)
		return
	}

	c.Header("Content-Disposition", disposition("attachment", res.Filename))
	c.Header("X-Invoice-Pages", strconv.Itoa(res.Pages))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// RenderPreview responds with one page as PNG. The page is chosen with the
// page query parameter and defaults to 1.
func (h *Handler) RenderPreview(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		badRequest(c, "page must be a positive integer")
		return
	}
	doc, inv, ok := h.invoice(c)
	if !ok {
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	res, err := invoicepdf.Preview(c.Request.Context(), &buf, inv, page, append(doc.Options(), h.opts...)...)
	metrics.ObserveExport("png", pages(res), time.Since(start), err)
	if err != nil {
		h.exportFailed(c, err)
		return
	}

	c.Header("Content-Disposition", disposition("inline", res.Filename))
	c.Header("X-Invoice-Pages", strconv.Itoa(res.Pages))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Plan responds with the layout summary of the posted document.
func (h *Handler) Plan(c *gin.Context) {
	doc, inv, ok := h.invoice(c)
	if !ok {
		return
	}
	plan, err := invoicepdf.Plan(inv, append(doc.Options(), h.opts...)...)
	if err != nil {
		h.exportFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"number":  plan.Header.NumberText(),
		"summary": plan.Summary(),
	})
}

// Palette responds with the colours derived for the accent and mode query
// parameters. The accent may be a preset name.
func (h *Handler) Palette(c *gin.Context) {
	accent := c.DefaultQuery("accent", h.render.Accent)
	if preset, ok := palette.Presets[strings.ToLower(accent)]; ok {
		accent = preset.Hex()
	}
	mode, ok := palette.ParseMode(c.DefaultQuery("mode", h.render.Mode))
	if !ok {
		badRequest(c, "mode must be outline, filled or terminal")
		return
	}
	c.JSON(http.StatusOK, palette.Derive(accent, mode))
}

// document reads and parses the request body and applies the configured
// defaults. It writes the error response itself.
func (h *Handler) document(c *gin.Context) (*doctpl.Document, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return nil, false
		}
		badRequest(c, "reading body: "+err.Error())
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		badRequest(c, "empty invoice document")
		return nil, false
	}
	doc, err := doctpl.ParseUntrusted(body)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	h.render.ApplyDefaults(doc)
	return doc, true
}

// invoice parses the request body and converts it to an invoice. Logo
// failures are reported without the underlying error, which may name paths.
func (h *Handler) invoice(c *gin.Context) (*doctpl.Document, model.Invoice, bool) {
	doc, ok := h.document(c)
	if !ok {
		return nil, model.Invoice{}, false
	}
	inv, err := doc.Invoice()
	if err != nil {
		loggerFrom(c).Info("invalid invoice document", "error", err)
		switch {
		case errors.Is(err, doctpl.ErrLogoSource):
			badRequest(c, "logo src is not accepted, send the image as base64 data")
		case errors.Is(err, doctpl.ErrLogo):
			badRequest(c, "logo is not a valid PNG, JPEG or GIF image")
		default:
			badRequest(c, "invalid invoice document")
		}
		return nil, model.Invoice{}, false
	}
	return doc, inv, true
}

// exportFailed maps export errors to status codes: layout failures are the
// client's content (422), backend failures are ours (503).
func (h *Handler) exportFailed(c *gin.Context, err error) {
	log := loggerFrom(c)

	var lerr *layout.LayoutError
	switch {
	case errors.As(err, &lerr):
		log.Info("invoice does not fit", "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": lerr.Error(), "layout": lerr})
	case errors.Is(err, invoicepdf.ErrInvalidParam):
		badRequest(c, err.Error())
	case errors.Is(err, invoicepdf.ErrBackendUnavailable):
		log.Error("render backend unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "render backend unavailable"})
	case errors.Is(err, context.Canceled):
		log.Warn("export canceled", "error", err)
		c.Status(499)
	default:
		log.Error("export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
	}
}

func disposition(kind, filename string) string {
	if v := mime.FormatMediaType(kind, map[string]string{"filename": filename}); v != "" {
		return v
	}
	return kind
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func pages(res *invoicepdf.Result) int {
	if res == nil {
		return 0
	}
	return res.Pages
}
