package layout

// PageSummary describes one planned page.
type PageSummary struct {
	Number     int     `json:"number"`
	Header     string  `json:"header"` // "full" or "continuation"
	FirstItem  int     `json:"firstItem"`
	Items      int     `json:"items"`
	TableTop   float64 `json:"tableTop,omitempty"`
	EmptyState bool    `json:"emptyState,omitempty"`
	Notes      bool    `json:"notes,omitempty"`
	Footer     bool    `json:"footer,omitempty"`
}

// Summary is a serializable overview of a plan.
type Summary struct {
	PageWidth           float64       `json:"pageWidth"`
	PageHeight          float64       `json:"pageHeight"`
	Policy              string        `json:"descriptionPolicy"`
	GridHeight          float64       `json:"gridHeight"`
	NotesHeight         float64       `json:"notesHeight,omitempty"`
	FooterHeight        float64       `json:"footerHeight"`
	ColumnWidths        []float64     `json:"columnWidths"`
	MaxRowsFirst        int           `json:"maxRowsFirstPage"`
	MaxRowsContinuation int           `json:"maxRowsContinuationPage"`
	TotalItems          int           `json:"totalItems"`
	Pages               []PageSummary `json:"pages"`
}

// Summary returns a serializable overview of the plan.
func (p *Plan) Summary() Summary {
	s := Summary{
		PageWidth:           p.PageWidth,
		PageHeight:          p.PageHeight,
		Policy:              p.Policy.String(),
		GridHeight:          p.Grid.Height,
		FooterHeight:        p.Footer.Height,
		ColumnWidths:        p.ColumnWidths(),
		MaxRowsFirst:        p.MaxRowsFirst,
		MaxRowsContinuation: p.MaxRowsContinuation,
		TotalItems:          len(p.Rows),
	}
	if p.Notes != nil {
		s.NotesHeight = p.Notes.Height
	}
	for _, pg := range p.Pages {
		ps := PageSummary{
			Number:     pg.Number,
			Header:     "full",
			FirstItem:  pg.Start,
			Items:      pg.RowCount(),
			EmptyState: pg.EmptyState,
			Notes:      pg.ShowNotes,
			Footer:     pg.ShowFooter,
		}
		if pg.Continuation {
			ps.Header = "continuation"
		}
		if pg.ShowTable {
			ps.TableTop = pg.TableTop
		}
		s.Pages = append(s.Pages, ps)
	}
	return s
}
