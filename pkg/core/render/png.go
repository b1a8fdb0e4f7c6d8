package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"
)

// Draw rasterizes p onto a white canvas. Each line is an anti-aliased stroke
// composited with the plan's opacity, so overlapping lines darken.
func Draw(p Plan, opts ...Option) (*image.RGBA, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, o.width, o.height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	ink := image.NewUniform(color.NRGBA{A: uint8(math.Round(p.Opacity * 255))})
	z := vector.NewRasterizer(0, 0)
	for _, s := range p.segments(o.width, o.height) {
		strokeSegment(z, canvas, s, o.strokeWidth, ink)
	}
	return canvas, nil
}

// RenderPNG draws p and encodes it as PNG.
func RenderPNG(p Plan, opts ...Option) ([]byte, error) {
	img, err := Draw(p, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// strokeSegment fills the quad around s, restricted to its bounding box
// within dst.
func strokeSegment(z *vector.Rasterizer, dst *image.RGBA, s segment, width float64, ink image.Image) {
	dx, dy := s.x1-s.x0, s.y1-s.y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx, ny := -dy/length*width/2, dx/length*width/2

	pad := width/2 + 1
	box := image.Rect(
		int(math.Floor(math.Min(s.x0, s.x1)-pad)),
		int(math.Floor(math.Min(s.y0, s.y1)-pad)),
		int(math.Ceil(math.Max(s.x0, s.x1)+pad)),
		int(math.Ceil(math.Max(s.y0, s.y1)+pad)),
	).Intersect(dst.Bounds())
	if box.Empty() {
		return
	}

	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	z.Reset(box.Dx(), box.Dy())
	z.MoveTo(float32(s.x0+nx-ox), float32(s.y0+ny-oy))
	z.LineTo(float32(s.x1+nx-ox), float32(s.y1+ny-oy))
	z.LineTo(float32(s.x1-nx-ox), float32(s.y1-ny-oy))
	z.LineTo(float32(s.x0-nx-ox), float32(s.y0-ny-oy))
	z.ClosePath()
	z.Draw(dst, box, ink, image.Point{})
}
