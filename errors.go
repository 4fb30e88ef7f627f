package invoicepdf

import (
	"errors"
	"fmt"

	"github.com/lvillar/invoicepdf/layout"
	"github.com/lvillar/invoicepdf/measure"
)

// Sentinel errors for export failure conditions.
var (
	// ErrLayoutImpossible reports content that cannot fit on a page. Use
	// errors.As with *layout.LayoutError for the page size, the column
	// widths and the offending section.
	ErrLayoutImpossible = layout.ErrNoFit
	// ErrBackendUnavailable reports a missing text measurer or font.
	ErrBackendUnavailable = measure.ErrUnavailable
	ErrInvalidParam       = errors.New("invoicepdf: invalid parameter")
)

// ExportError represents an error that occurred during a specific export
// stage. It wraps the underlying error and names the stage for context.
type ExportError struct {
	Op  string // stage name, e.g. "plan", "render", "pdf"
	Err error  // underlying error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invoicepdf.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("invoicepdf.%s: unknown error", e.Op)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// newExportError creates a new ExportError wrapping err with stage context.
func newExportError(op string, err error) *ExportError {
	return &ExportError{Op: op, Err: err}
}
