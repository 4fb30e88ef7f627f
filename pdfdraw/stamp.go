package pdfdraw

import "github.com/lvillar/invoicepdf/draw"

// Status stamp appearance.
const (
	stampSize    = 60.0 // points
	stampOpacity = 0.2
	stampAngle   = 30.0
)

// stamp draws a translucent diagonal status label across the page centre.
func (e *executor) stamp(s draw.Stamp, pageW, pageH float64) {
	if s.Text == "" {
		return
	}
	pdf := e.pdf
	e.setFont(draw.Font{Family: draw.Sans, Bold: true, Size: stampSize})
	pdf.SetTextColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	pdf.SetAlpha(stampOpacity, "Normal")

	text := e.tr(s.Text)
	cx, cy := pageW/2, pageH/2
	pdf.TransformBegin()
	pdf.TransformRotate(stampAngle, cx, cy)
	_, size := pdf.GetFontSize()
	pdf.Text(cx-pdf.GetStringWidth(text)/2, cy+size/3, text)
	pdf.TransformEnd()

	pdf.SetAlpha(1, "Normal")
}
