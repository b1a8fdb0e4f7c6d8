package plan

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/stringbean/pkg/core/raster"
)

// maxIntensity is the 8-bit intensity range the residual is expressed in.
const maxIntensity = math.MaxUint8

// Residual is the per-pixel darkness still owed to the image.
//
// Values start at 255 - v for a source pixel v and decrease as lines are
// committed. They may go negative, which marks pixels that received more thread
// than the image asked for.
type Residual struct {
	width, height int
	values        []float64

	// lineWeight is the opacity of one line in intensity units, [0, 255).
	lineWeight float64
	// lightnessPenalty scales the cost of overshooting a pixel.
	lightnessPenalty float64
}

// NewResidual inverts src into a residual buffer. lineWeight is given in
// intensity units.
func NewResidual(src Source, lineWeight, lightnessPenalty float64) *Residual {
	values := make([]float64, len(src.Pix))
	for i, v := range src.Pix {
		values[i] = float64(maxIntensity - v)
	}
	return &Residual{
		width:            src.Width,
		height:           src.Height,
		values:           values,
		lineWeight:       lineWeight,
		lightnessPenalty: lightnessPenalty,
	}
}

// Width returns the buffer width in pixels.
func (r *Residual) Width() int { return r.width }

// Height returns the buffer height in pixels.
func (r *Residual) Height() int { return r.height }

// At returns the residual of pixel (x, y). It panics if the pixel is out of bounds.
func (r *Residual) At(x, y int) float64 {
	if !r.inBounds(x, y) {
		panic(fmt.Sprintf("plan: pixel (%d, %d) outside %dx%d buffer", x, y, r.width, r.height))
	}
	return r.values[r.index(x, y)]
}

// Values exposes the underlying buffer in row-major order. Callers must not
// modify it.
func (r *Residual) Values() []float64 { return r.values }

// Loss returns the total absolute residual over the whole buffer.
func (r *Residual) Loss() float64 {
	return floats.Norm(r.values, 1)
}

// Clip returns the samples whose pixels lie inside the buffer.
func (r *Residual) Clip(samples []raster.Sample) []raster.Sample {
	out := make([]raster.Sample, 0, len(samples))
	for _, s := range samples {
		if r.inBounds(s.Pixel.X, s.Pixel.Y) {
			out = append(out, s)
		}
	}
	return out
}

// Score returns the mean penalty of drawing a line through samples. Lower is
// better. An empty line scores -Inf. Samples must already be clipped.
func (r *Residual) Score(samples []raster.Sample) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, s := range samples {
		adjusted := r.values[r.index(s.Pixel.X, s.Pixel.Y)] - s.Weight*r.lineWeight
		if adjusted < 0 {
			sum += -r.lightnessPenalty * adjusted
		} else {
			sum += adjusted
		}
	}
	score := sum / float64(len(samples))
	if math.IsNaN(score) {
		panic("plan: line score is NaN")
	}
	return score
}

// Commit spends one line's worth of ink on every sample. Samples must already
// be clipped.
func (r *Residual) Commit(samples []raster.Sample) {
	for _, s := range samples {
		r.values[r.index(s.Pixel.X, s.Pixel.Y)] -= s.Weight * r.lineWeight
	}
}

func (r *Residual) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.width && y < r.height && x+y*r.width < len(r.values)
}

func (r *Residual) index(x, y int) int {
	return x + y*r.width
}
