package raster

import "image"

// Grid is the default rasterizer. It walks the integer grid from one endpoint
// to the other, stepping in x or y according to an accumulated error term, and
// visits every cell the segment passes through with weight 1.0.
//
// Endpoints are truncated toward zero before walking.
// See https://playtechs.blogspot.com/2007/03/raytracing-on-grid.html.
type Grid struct{}

// Rasterize implements Rasterizer.
func (Grid) Rasterize(from, to Position) []Sample {
	x0, y0 := int(from.X), int(from.Y)
	x1, y1 := int(to.X), int(to.Y)
	if !canonical(float64(x0), float64(y0), float64(x1), float64(y1)) {
		return reversed(walkGrid(x1, y1, x0, y0))
	}
	return walkGrid(x0, y0, x1, y1)
}

func walkGrid(x0, y0, x1, y1 int) []Sample {
	dx, dy := abs(x1-x0), abs(y1-y0)
	xInc, yInc := sign(x1-x0), sign(y1-y0)

	n := 1 + dx + dy
	e := dx - dy
	dx *= 2
	dy *= 2

	samples := make([]Sample, 0, n)
	x, y := x0, y0
	for range n {
		samples = append(samples, Sample{Pixel: image.Pt(x, y), Weight: 1})
		if e > 0 {
			x += xInc
			e -= dy
		} else {
			y += yInc
			e += dx
		}
	}
	return samples
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
