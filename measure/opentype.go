package measure

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/lvillar/invoicepdf/draw"
)

const mmPerPoint = 25.4 / 72

type faceKey struct {
	font draw.Font
	dpi  float64
}

// OpenType measures and rasterizes with the Go font family. It is the
// metrics source of the raster preview backend.
type OpenType struct {
	mu    sync.Mutex
	fonts map[draw.Family][2]*opentype.Font // regular, bold
	faces map[faceKey]font.Face
}

// NewOpenType parses the embedded Go fonts.
func NewOpenType() (*OpenType, error) {
	parse := func(b []byte) (*opentype.Font, error) {
		f, err := opentype.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return f, nil
	}
	o := &OpenType{
		fonts: make(map[draw.Family][2]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
	for fam, src := range map[draw.Family][2][]byte{
		draw.Sans: {goregular.TTF, gobold.TTF},
		draw.Mono: {gomono.TTF, gomonobold.TTF},
	} {
		reg, err := parse(src[0])
		if err != nil {
			return nil, err
		}
		bold, err := parse(src[1])
		if err != nil {
			return nil, err
		}
		o.fonts[fam] = [2]*opentype.Font{reg, bold}
	}
	return o, nil
}

// Face returns a cached face for f rendered at dpi. Callers must hold no
// other reference to the face across goroutines; faces are not safe for
// concurrent use.
func (o *OpenType) Face(f draw.Font, dpi float64) (font.Face, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.face(f, dpi)
}

func (o *OpenType) face(f draw.Font, dpi float64) (font.Face, error) {
	if o == nil || o.fonts == nil {
		return nil, ErrUnavailable
	}
	k := faceKey{f, dpi}
	if face, ok := o.faces[k]; ok {
		return face, nil
	}
	pair, ok := o.fonts[f.Family]
	if !ok {
		return nil, fmt.Errorf("%w: no face for %s", ErrUnavailable, f)
	}
	src := pair[0]
	if f.Bold {
		src = pair[1]
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	o.faces[k] = face
	return face, nil
}

// Width implements Measurer. Faces are measured at 72 DPI, where one pixel
// is one point.
func (o *OpenType) Width(text string, f draw.Font) (float64, error) {
	if o == nil {
		return 0, ErrUnavailable
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	face, err := o.face(f, 72)
	if err != nil {
		return 0, err
	}
	adv := font.MeasureString(face, text)
	return float64(adv) / 64 * mmPerPoint, nil
}
