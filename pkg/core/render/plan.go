package render

import (
	"fmt"
	"math"

	"github.com/matzehuels/stringbean/pkg/core/raster"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Default canvas size and stroke width.
const (
	DefaultWidth       = 850
	DefaultHeight      = 850
	DefaultStrokeWidth = 1.0
)

// Plan is an anchor order ready to be drawn.
type Plan struct {
	// Width and Height are the size of the planning image.
	Width, Height int

	// Anchors are positions in the planning image's pixel space.
	Anchors []raster.Position

	// Order lists anchor indices; each consecutive pair is one line.
	Order []int

	// Opacity of a single line, in [0, 1].
	Opacity float64
}

func (p Plan) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid plan size %dx%d", p.Width, p.Height)
	}
	if !(p.Opacity >= 0 && p.Opacity <= 1) {
		return fmt.Errorf("line opacity %v not in [0, 1]", p.Opacity)
	}
	for i, a := range p.Order {
		if a < 0 || a >= len(p.Anchors) {
			return fmt.Errorf("order[%d] = %d: no such anchor", i, a)
		}
	}
	return nil
}

// segment is one line in canvas coordinates.
type segment struct {
	x0, y0, x1, y1 float64
}

// segments maps every line of p onto a canvas of the given size.
func (p Plan) segments(width, height int) []segment {
	f := fit(p.Width, p.Height, width, height)
	if len(p.Order) < 2 {
		return nil
	}
	out := make([]segment, 0, len(p.Order)-1)
	for i := 1; i < len(p.Order); i++ {
		x0, y0 := f.apply(p.Anchors[p.Order[i-1]])
		x1, y1 := f.apply(p.Anchors[p.Order[i]])
		out = append(out, segment{x0, y0, x1, y1})
	}
	return out
}

// frame maps planning image coordinates to canvas coordinates.
type frame struct {
	scale, dx, dy float64
}

func fit(srcW, srcH, dstW, dstH int) frame {
	scale := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	return frame{
		scale: scale,
		dx:    (float64(dstW) - scale*float64(srcW)) / 2,
		dy:    (float64(dstH) - scale*float64(srcH)) / 2,
	}
}

func (f frame) apply(p raster.Position) (x, y float64) {
	return p.X*f.scale + f.dx, p.Y*f.scale + f.dy
}

// Option configures a renderer.
type Option func(*options)

type options struct {
	width, height int
	strokeWidth   float64
	background    bool
}

// WithSize sets the canvas size in output units.
func WithSize(width, height int) Option {
	return func(o *options) { o.width, o.height = width, height }
}

// WithStrokeWidth sets the line width in output units.
func WithStrokeWidth(w float64) Option { return func(o *options) { o.strokeWidth = w } }

// WithBackground adds a white background rectangle to SVG output. PNG
// output always has one.
func WithBackground() Option { return func(o *options) { o.background = true } }

func newOptions(opts []Option) (options, error) {
	o := options{width: DefaultWidth, height: DefaultHeight, strokeWidth: DefaultStrokeWidth}
	for _, opt := range opts {
		opt(&o)
	}
	if o.width <= 0 || o.height <= 0 {
		return o, fmt.Errorf("invalid canvas size %dx%d", o.width, o.height)
	}
	if !(o.strokeWidth > 0) {
		return o, fmt.Errorf("invalid stroke width %v", o.strokeWidth)
	}
	return o, nil
}

// Render draws p in the given format.
func Render(format string, p Plan, opts ...Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(p, opts...)
	case FormatPNG:
		return RenderPNG(p, opts...)
	case FormatPDF:
		return RenderPDF(p, opts...)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
