package plan

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stringbean/pkg/core/raster"
)

// Config holds the planner's scalar configuration.
type Config struct {
	// LineWeight is the opacity of a single line, in [0, 1).
	LineWeight float64

	// GapCount is the number of anchors skipped on each side of the current
	// anchor. It must satisfy 2*GapCount+1 < len(anchors) for any line to exist.
	GapCount int

	// LightnessPenalty multiplies the cost of darkening pixels that are
	// already satisfied.
	LightnessPenalty float64

	// Workers bounds the number of goroutines scoring candidates in one step.
	// Values <= 1 score sequentially. The rasterizer must be safe for
	// concurrent use when Workers > 1.
	Workers int

	// Logger receives a debug entry per committed line. Nil discards.
	Logger *log.Logger
}

// Planner plans the anchor order for one image. A Planner performs exactly
// one run.
type Planner struct {
	cfg        Config
	lineWeight float64
	anchors    []raster.Position
	rasterizer raster.Rasterizer
	residual   *Residual
	logger     *log.Logger
	ran        bool
}

// New validates cfg and builds a planner over src. anchors and r are borrowed
// for the planner's lifetime and must not change during a run. A nil r selects
// raster.Grid.
func New(cfg Config, r raster.Rasterizer, anchors []raster.Position, src Source) (*Planner, error) {
	if !(cfg.LineWeight >= 0 && cfg.LineWeight < 1) {
		return nil, fmt.Errorf("%w: got %v", ErrLineWeight, cfg.LineWeight)
	}
	if cfg.GapCount < 0 {
		return nil, fmt.Errorf("anchor gap count must not be negative: got %d", cfg.GapCount)
	}
	if !src.Valid() {
		return nil, fmt.Errorf("%w: %dx%d with %d samples", ErrImageSize, src.Width, src.Height, len(src.Pix))
	}
	if len(anchors) == 0 {
		return nil, ErrNoAnchors
	}
	if r == nil {
		r = raster.Grid{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	lineWeight := maxIntensity * cfg.LineWeight
	return &Planner{
		cfg:        cfg,
		lineWeight: lineWeight,
		anchors:    anchors,
		rasterizer: r,
		residual:   NewResidual(src, lineWeight, cfg.LightnessPenalty),
		logger:     logger,
	}, nil
}

// Run plans lines starting at anchor start until s reports completion.
//
// The strategy is consulted before every step. If no eligible anchor remains,
// Run returns the order planned so far together with an *ExhaustedError.
func (p *Planner) Run(start int, s Strategy) ([]int, error) {
	if p.ran {
		return nil, ErrPlannerUsed
	}
	p.ran = true

	if start < 0 || start >= len(p.anchors) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrStartAnchor, start, len(p.anchors))
	}

	anchor := start
	order := []int{start}

	for !s.Done(p, order) {
		next, score, ok := p.nextAnchor(anchor)
		if !ok {
			return order, &ExhaustedError{Anchor: anchor, Order: slices.Clone(order)}
		}

		p.residual.Commit(p.trace(anchor, next))
		p.logger.Debug("line", "from", anchor, "to", next, "score", score)

		anchor = next
		order = append(order, anchor)
	}

	return order, nil
}

// Anchors returns the anchor ring the planner was built with.
func (p *Planner) Anchors() []raster.Position { return p.anchors }

// Config returns the configuration the planner was built with.
func (p *Planner) Config() Config { return p.cfg }

// LineWeight returns the line weight in intensity units.
func (p *Planner) LineWeight() float64 { return p.lineWeight }

// Residual returns the planner's residual buffer. It must not be modified
// while a run is in progress.
func (p *Planner) Residual() *Residual { return p.residual }

// Loss returns the total absolute residual of the image.
func (p *Planner) Loss() float64 { return p.residual.Loss() }

// trace rasterizes the line between two anchors and drops out-of-bounds samples.
func (p *Planner) trace(from, to int) []raster.Sample {
	return p.residual.Clip(p.rasterizer.Rasterize(p.anchors[from], p.anchors[to]))
}
