// Package pipeline provides the plan → render pipeline shared by the CLI and
// the HTTP server.
//
// # Stages
//
//  1. Plan: resize and flatten the image, generate anchors and run the greedy
//     planner. The result is an [io.Document].
//  2. Render: draw the document as SVG, PNG, PDF or JSON.
//
// Both stages are cached by a [Runner]: plans by image content and planning
// options, artifacts by plan content and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, img, pipeline.Options{
//	    Chords:  800,
//	    Formats: []string{"svg", "png"},
//	})
//	if errors.Is(err, errors.ErrCodePlanExhausted) {
//	    // result still holds the partial plan and its artifacts
//	}
package pipeline

import (
	"io"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stringbean/pkg/cache"
	"github.com/matzehuels/stringbean/pkg/core/anchors"
	"github.com/matzehuels/stringbean/pkg/core/plan"
	"github.com/matzehuels/stringbean/pkg/core/raster"
	"github.com/matzehuels/stringbean/pkg/core/render"
	"github.com/matzehuels/stringbean/pkg/errors"
	sbio "github.com/matzehuels/stringbean/pkg/io"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	DefaultChords      = 500
	DefaultOpacity     = 0.2
	DefaultAnchors     = 288
	DefaultPenalty     = 5.0
	DefaultLossWait    = plan.DefaultLossWait
	DefaultShape       = anchors.ShapeCircle
	DefaultStrategy    = StrategyCount
	DefaultRasterizer  = raster.NameGrid
	DefaultWidth       = render.DefaultWidth
	DefaultHeight      = render.DefaultHeight
	DefaultStrokeWidth = render.DefaultStrokeWidth
)

// Termination strategies.
const (
	// StrategyCount draws exactly Chords lines.
	StrategyCount = "count"

	// StrategyLoss draws until the residual loss drops below TargetLoss.
	StrategyLoss = "loss"
)

// Format constants for output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatPDF  = render.FormatPDF
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidStrategies is the set of supported termination strategies.
var ValidStrategies = map[string]bool{
	StrategyCount: true,
	StrategyLoss:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It is decoded from
// API requests and config files, so every field carries json, toml and yaml
// tags. Zero values select the defaults.
type Options struct {
	// Planning options
	Chords     int      `json:"chords,omitempty" toml:"chords" yaml:"chords,omitempty"`
	Opacity    float64  `json:"opacity,omitempty" toml:"opacity" yaml:"opacity,omitempty"`
	Anchors    int      `json:"anchors,omitempty" toml:"anchors" yaml:"anchors,omitempty"`
	Gap        int      `json:"gap,omitempty" toml:"gap" yaml:"gap,omitempty"`
	Radius     float64  `json:"radius,omitempty" toml:"radius" yaml:"radius,omitempty"` // <= 0 is the largest radius
	Penalty    *float64 `json:"penalty,omitempty" toml:"penalty" yaml:"penalty,omitempty"`
	Start      int      `json:"start,omitempty" toml:"start" yaml:"start,omitempty"`
	Shape      string   `json:"shape,omitempty" toml:"shape" yaml:"shape,omitempty"`
	Strategy   string   `json:"strategy,omitempty" toml:"strategy" yaml:"strategy,omitempty"`
	TargetLoss float64  `json:"target_loss,omitempty" toml:"target_loss" yaml:"target_loss,omitempty"`
	LossWait   int      `json:"loss_wait,omitempty" toml:"loss_wait" yaml:"loss_wait,omitempty"`
	Rasterizer string   `json:"rasterizer,omitempty" toml:"rasterizer" yaml:"rasterizer,omitempty"`
	Workers    int      `json:"workers,omitempty" toml:"workers" yaml:"workers,omitempty"`
	MaxSize    int      `json:"max_size,omitempty" toml:"max_size" yaml:"max_size,omitempty"` // 0 keeps the image size

	// Render options
	Formats     []string `json:"formats,omitempty" toml:"formats" yaml:"formats,omitempty"`
	Width       int      `json:"width,omitempty" toml:"width" yaml:"width,omitempty"`
	Height      int      `json:"height,omitempty" toml:"height" yaml:"height,omitempty"`
	StrokeWidth float64  `json:"stroke_width,omitempty" toml:"stroke_width" yaml:"stroke_width,omitempty"`
	Background  bool     `json:"background,omitempty" toml:"background" yaml:"background,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger         `json:"-" toml:"-" yaml:"-"`
	Progress func(plan.Progress) `json:"-" toml:"-" yaml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the planned anchor order.
	Document *sbio.Document

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Lines      int
	Loss       float64
	PlanTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlanHit   bool // Whether the plan came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a termination strategy is valid.
func ValidateStrategy(strategy string) error {
	if !ValidStrategies[strategy] {
		return errors.New(errors.ErrCodeInvalidStrategy, "invalid strategy: %q (must be one of: count, loss)", strategy)
	}
	return nil
}

// ValidateShape checks that an anchor shape is valid.
func ValidateShape(shape string) error {
	if !anchors.ValidShapes[shape] {
		return errors.New(errors.ErrCodeInvalidShape, "invalid shape: %q (must be one of: circle, rectangle)", shape)
	}
	return nil
}

// ValidateRasterizer checks that a rasterizer name is valid.
func ValidateRasterizer(name string) error {
	if _, ok := raster.New(name); !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid rasterizer: %q (must be one of: grid, antialiased)", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates every field.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForPlan(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetPlanDefaults sets default values for planning.
func (o *Options) SetPlanDefaults() {
	if o.Chords == 0 {
		o.Chords = DefaultChords
	}
	if o.Opacity == 0 {
		o.Opacity = DefaultOpacity
	}
	if o.Anchors == 0 {
		o.Anchors = DefaultAnchors
	}
	if o.Penalty == nil {
		p := DefaultPenalty
		o.Penalty = &p
	}
	if o.Shape == "" {
		o.Shape = DefaultShape
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.LossWait == 0 {
		o.LossWait = DefaultLossWait
	}
	if o.Rasterizer == "" {
		o.Rasterizer = DefaultRasterizer
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForPlan applies planning defaults and validates planning fields.
func (o *Options) ValidateForPlan() error {
	o.SetPlanDefaults()

	if err := errors.ValidatePositive("chords", o.Chords); err != nil {
		return err
	}
	if err := errors.ValidateUnitInterval("opacity", o.Opacity); err != nil {
		return err
	}
	if err := errors.ValidatePositive("anchors", o.Anchors); err != nil {
		return err
	}
	if o.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "gap must not be negative: got %d", o.Gap)
	}
	if math.IsNaN(o.Radius) || math.IsInf(o.Radius, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "radius must be finite: got %v", o.Radius)
	}
	if err := errors.ValidateNonNegative("penalty", *o.Penalty); err != nil {
		return err
	}
	if o.Start < 0 || o.Start >= o.Anchors {
		return errors.New(errors.ErrCodeInvalidConfig, "start anchor %d not in [0, %d)", o.Start, o.Anchors)
	}
	if err := ValidateShape(o.Shape); err != nil {
		return err
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Strategy == StrategyLoss {
		if err := errors.ValidateNonNegative("target_loss", o.TargetLoss); err != nil {
			return err
		}
		if err := errors.ValidatePositive("loss_wait", o.LossWait); err != nil {
			return err
		}
	}
	if err := ValidateRasterizer(o.Rasterizer); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative: got %d", o.Workers)
	}
	if o.MaxSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_size must not be negative: got %d", o.MaxSize)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.StrokeWidth == 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults and validates render fields.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidatePositive("width", o.Width); err != nil {
		return err
	}
	if err := errors.ValidatePositive("height", o.Height); err != nil {
		return err
	}
	if !(o.StrokeWidth > 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "stroke_width must be positive: got %v", o.StrokeWidth)
	}
	return nil
}

// PenaltyValue returns the lightness penalty, or the default if unset.
func (o *Options) PenaltyValue() float64 {
	if o.Penalty == nil {
		return DefaultPenalty
	}
	return *o.Penalty
}

// PlanKeyOpts returns cache key options for planning.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	k := cache.PlanKeyOpts{
		Chords:     o.Chords,
		Opacity:    o.Opacity,
		Anchors:    o.Anchors,
		Gap:        o.Gap,
		Radius:     max(o.Radius, 0),
		Penalty:    o.PenaltyValue(),
		Start:      o.Start,
		Shape:      o.Shape,
		Strategy:   o.Strategy,
		Rasterizer: o.Rasterizer,
		MaxSize:    o.MaxSize,
	}
	if o.Strategy == StrategyLoss {
		k.TargetLoss = o.TargetLoss
		k.LossWait = o.LossWait
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Height:      o.Height,
		StrokeWidth: o.StrokeWidth,
		Background:  o.Background || format == FormatPNG,
	}
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}
