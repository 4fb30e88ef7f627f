package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/invoicepdf"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "layout_impossible", Result(fmt.Errorf("plan: %w", invoicepdf.ErrLayoutImpossible)))
	assert.Equal(t, "backend_unavailable", Result(invoicepdf.ErrBackendUnavailable))
	assert.Equal(t, "error", Result(errors.New("disk full")))
}

func TestObserveExport(t *testing.T) {
	before := testutil.ToFloat64(exportsTotal.WithLabelValues("pdf", "ok"))
	ObserveExport("pdf", 3, 10*time.Millisecond, nil)
	ObserveExport("pdf", 0, 0, invoicepdf.ErrLayoutImpossible)

	assert.Equal(t, before+1, testutil.ToFloat64(exportsTotal.WithLabelValues("pdf", "ok")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(exportsTotal.WithLabelValues("pdf", "layout_impossible")), 1.0)
}

func TestGinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `invoicepdf_http_requests_total{method="GET",path="/ping",status="200"}`)
}
