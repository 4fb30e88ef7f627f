package pdfdraw

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// letterhead is the first page of a stationery PDF imported as a template.
type letterhead struct {
	imp   *gofpdi.Importer
	tplID int
}

// importLetterhead imports page 1 of data. The importer panics on
// malformed input, which is reported as an error.
func importLetterhead(pdf *gofpdf.Fpdf, data []byte) (lh *letterhead, err error) {
	defer func() {
		if r := recover(); r != nil {
			lh, err = nil, fmt.Errorf("pdfdraw: letterhead: %v", r)
		}
	}()
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(data))
	tplID := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	if pdf.Err() {
		return nil, fmt.Errorf("pdfdraw: letterhead: %w", pdf.Error())
	}
	return &letterhead{imp: imp, tplID: tplID}, nil
}

// draw stretches the letterhead over the whole page.
func (l *letterhead) draw(pdf *gofpdf.Fpdf, pageW, pageH float64) {
	l.imp.UseImportedTemplate(pdf, l.tplID, 0, 0, pageW, pageH)
}
