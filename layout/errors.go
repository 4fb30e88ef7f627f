package layout

import (
	"errors"
	"fmt"
)

// ErrNoFit reports that the content cannot be placed on the page geometry.
var ErrNoFit = errors.New("layout: content does not fit on the page")

// LayoutError describes which section failed to fit and by how much.
type LayoutError struct {
	Section      string    `json:"section"`
	PageWidth    float64   `json:"pageWidth"`
	PageHeight   float64   `json:"pageHeight"`
	Available    float64   `json:"available"` // mm of vertical space the section could use
	Required     float64   `json:"required"`  // mm of vertical space the section needs
	ColumnWidths []float64 `json:"columnWidths"`
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout: %s needs %.1fmm but only %.1fmm is available on a %.1fx%.1fmm page",
		e.Section, e.Required, e.Available, e.PageWidth, e.PageHeight)
}

func (e *LayoutError) Unwrap() error {
	return ErrNoFit
}
