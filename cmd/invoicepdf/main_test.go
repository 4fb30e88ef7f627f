package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `
sender:
  name: Acme Studio
recipient:
  company: Widget Co
invoice:
  sequence: "07"
  issueDate: 2024-03-01
  status: paid
items:
  - type: Design
    description: Logo
    quantity: 2
    rate: 100
`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.RunContext(t.Context(), append([]string{"invoicepdf"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDocument), 0o644))
	return path
}

func TestRenderCommand(t *testing.T) {
	doc := writeDocument(t)
	out := filepath.Join(t.TempDir(), "out.pdf")

	_, stderr, err := run(t, "", "render", "--stamp", "-o", out, doc)
	require.NoError(t, err)
	assert.Contains(t, stderr, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderCommandStdio(t *testing.T) {
	stdout, _, err := run(t, testDocument, "render", "-o", "-", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "%PDF"))
}

func TestRenderCommandMissingArgument(t *testing.T) {
	_, _, err := run(t, "", "render")
	assert.Error(t, err)
}

func TestPlanCommand(t *testing.T) {
	stdout, _, err := run(t, "", "plan", writeDocument(t))
	require.NoError(t, err)

	var out struct {
		Number  string `json:"number"`
		Summary struct {
			TotalItems int `json:"totalItems"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "IN-WC-07", out.Number)
	assert.Equal(t, 1, out.Summary.TotalItems)
}

func TestPreviewCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "page.png")
	_, _, err := run(t, "", "preview", "--dpi", "72", "-o", out, writeDocument(t))
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestPaletteCommand(t *testing.T) {
	stdout, _, err := run(t, "", "palette", "--mode", "terminal", "neon")
	require.NoError(t, err)

	var p map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &p))
	assert.Equal(t, "#CEFF00", p["accent"])
	assert.Equal(t, true, p["monochrome"])

	_, _, err = run(t, "", "palette", "not-a-colour")
	assert.Error(t, err)
}

func TestTemplateCommands(t *testing.T) {
	tpl := filepath.Join(t.TempDir(), "acme.template.yaml")
	_, _, err := run(t, "", "template", "save", "--name", "acme", "-o", tpl, writeDocument(t))
	require.NoError(t, err)

	saved, err := os.ReadFile(tpl)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "name: acme")
	assert.NotContains(t, string(saved), "Logo", "line items are dropped unless --items")

	stdout, _, err := run(t, "", "template", "apply", tpl)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Acme Studio")
	assert.Contains(t, stdout, "Widget Co")
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("INVOICEPDF_PAPER", "tabloid")
	_, _, err := run(t, "", "palette", "#000000")
	assert.Error(t, err)
}
