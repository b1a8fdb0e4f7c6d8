// Package anchors generates the anchor rings lines are strung between.
package anchors

import (
	"fmt"
	"math"

	"github.com/matzehuels/stringbean/pkg/core/raster"
)

// Shape names accepted by Generate.
const (
	ShapeCircle    = "circle"
	ShapeRectangle = "rectangle"
)

// ValidShapes is the set of supported anchor shapes.
var ValidShapes = map[string]bool{
	ShapeCircle:    true,
	ShapeRectangle: true,
}

// Generate returns count anchors of the named shape for a width x height image.
// radius only applies to circles.
func Generate(shape string, count, width, height int, radius float64) ([]raster.Position, error) {
	switch shape {
	case ShapeCircle, "":
		return Circle(count, width, height, radius), nil
	case ShapeRectangle:
		return Rectangle(count, width, height), nil
	}
	return nil, fmt.Errorf("unknown anchor shape: %q", shape)
}

// MaxRadius returns the largest circle radius that fits a width x height image.
func MaxRadius(width, height int) float64 {
	return math.Min(float64(width)/2, float64(height)/2)
}

// Circle returns count anchors evenly spaced on a circle centred in the image,
// starting at angle zero and proceeding clockwise in image coordinates. The
// radius is clamped to MaxRadius; a radius <= 0 selects MaxRadius.
func Circle(count, width, height int, radius float64) []raster.Position {
	if count <= 0 {
		return nil
	}
	cx, cy := float64(width)/2, float64(height)/2
	limit := MaxRadius(width, height)
	if radius <= 0 || radius > limit {
		radius = limit
	}

	anchors := make([]raster.Position, count)
	for i := range anchors {
		theta := float64(i) * 2 * math.Pi / float64(count)
		anchors[i] = raster.Position{
			X: cx + radius*math.Cos(theta),
			Y: cy + radius*math.Sin(theta),
		}
	}
	return anchors
}

// Rectangle returns count anchors evenly spaced along the image border,
// starting in the top left corner and walking clockwise. The border runs
// through the outermost pixel centres so every anchor is in bounds.
func Rectangle(count, width, height int) []raster.Position {
	if count <= 0 {
		return nil
	}
	w, h := float64(max(width-1, 0)), float64(max(height-1, 0))
	perimeter := 2*w + 2*h
	step := perimeter / float64(count)

	anchors := make([]raster.Position, count)
	for i := range anchors {
		d := float64(i) * step
		switch {
		case d < w:
			anchors[i] = raster.Position{X: d, Y: 0}
		case d < w+h:
			anchors[i] = raster.Position{X: w, Y: d - w}
		case d < 2*w+h:
			anchors[i] = raster.Position{X: 2*w + h - d, Y: h}
		default:
			anchors[i] = raster.Position{X: 0, Y: 2*w + 2*h - d}
		}
	}
	return anchors
}
