package raster

import (
	"cmp"
	"image"
	"math"
	"slices"

	"golang.org/x/image/vector"
)

// Antialiased rasterizes a segment as a stroke of the given width and reports
// the fractional pixel coverage of that stroke as sample weights.
//
// Samples are ordered by their projection onto the segment, so the sequence
// runs from one endpoint to the other like the Grid walk does.
type Antialiased struct {
	// Width is the stroke width in pixels. Values <= 0 mean 1.
	Width float64
}

// Rasterize implements Rasterizer.
func (a Antialiased) Rasterize(from, to Position) []Sample {
	if !canonical(from.X, from.Y, to.X, to.Y) {
		return reversed(a.stroke(to, from))
	}
	return a.stroke(from, to)
}

type projected struct {
	s Sample
	t float64
}

func (a Antialiased) stroke(from, to Position) []Sample {
	width := a.Width
	if width <= 0 {
		width = 1
	}

	dx, dy := to.X-from.X, to.Y-from.Y
	length2 := dx*dx + dy*dy
	if length2 == 0 {
		return nil
	}
	length := math.Sqrt(length2)
	nx, ny := -dy/length*width/2, dx/length*width/2

	pad := width/2 + 1
	minX := int(math.Floor(math.Min(from.X, to.X) - pad))
	minY := int(math.Floor(math.Min(from.Y, to.Y) - pad))
	maxX := int(math.Ceil(math.Max(from.X, to.X) + pad))
	maxY := int(math.Ceil(math.Max(from.Y, to.Y) + pad))
	w, h := maxX-minX, maxY-minY

	ox, oy := float64(minX), float64(minY)
	r := vector.NewRasterizer(w, h)
	r.MoveTo(float32(from.X+nx-ox), float32(from.Y+ny-oy))
	r.LineTo(float32(to.X+nx-ox), float32(to.Y+ny-oy))
	r.LineTo(float32(to.X-nx-ox), float32(to.Y-ny-oy))
	r.LineTo(float32(from.X-nx-ox), float32(from.Y-ny-oy))
	r.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	var cells []projected
	for y := range h {
		for x := range w {
			cov := mask.AlphaAt(x, y).A
			if cov == 0 {
				continue
			}
			px, py := x+minX, y+minY
			cx, cy := float64(px)+0.5, float64(py)+0.5
			cells = append(cells, projected{
				s: Sample{Pixel: image.Pt(px, py), Weight: float64(cov) / 255},
				t: ((cx-from.X)*dx + (cy-from.Y)*dy) / length2,
			})
		}
	}

	slices.SortStableFunc(cells, func(a, b projected) int {
		if c := cmp.Compare(a.t, b.t); c != 0 {
			return c
		}
		if c := cmp.Compare(a.s.Pixel.Y, b.s.Pixel.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.s.Pixel.X, b.s.Pixel.X)
	})

	samples := make([]Sample, len(cells))
	for i, c := range cells {
		samples[i] = c.s
	}
	return samples
}
