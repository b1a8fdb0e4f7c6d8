package raster

import (
	"image"
	"slices"
)

// Position is a point in continuous image space.
type Position struct {
	X, Y float64
}

// Sample is a single pixel touched by a rasterized line together with its
// coverage weight in [0, 1].
type Sample struct {
	Pixel  image.Point
	Weight float64
}

// Rasterizer converts the segment between two positions into pixel samples.
type Rasterizer interface {
	Rasterize(from, to Position) []Sample
}

// RasterizerFunc adapts an ordinary function to the Rasterizer interface.
type RasterizerFunc func(from, to Position) []Sample

// Rasterize calls f(from, to).
func (f RasterizerFunc) Rasterize(from, to Position) []Sample { return f(from, to) }

// Names of the built-in rasterizers.
const (
	NameGrid        = "grid"
	NameAntialiased = "antialiased"
)

// New returns the built-in rasterizer registered under name.
// The boolean result is false for unknown names.
func New(name string) (Rasterizer, bool) {
	switch name {
	case NameGrid, "":
		return Grid{}, true
	case NameAntialiased:
		return Antialiased{Width: 1}, true
	}
	return nil, false
}

// canonical reports whether from precedes to in lexicographic (x, y) order.
// Rasterizers walk segments in canonical order and reverse the samples for the
// opposite direction, which makes every rasterization exactly reversible.
func canonical(x0, y0, x1, y1 float64) bool {
	return x0 < x1 || (x0 == x1 && y0 <= y1)
}

func reversed(s []Sample) []Sample {
	slices.Reverse(s)
	return s
}
