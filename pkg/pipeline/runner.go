package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stringbean/pkg/cache"
	"github.com/matzehuels/stringbean/pkg/core/plan"
	"github.com/matzehuels/stringbean/pkg/errors"
	sbio "github.com/matzehuels/stringbean/pkg/io"
	"github.com/matzehuels/stringbean/pkg/observability"
)

// Cache key kinds reported to observability hooks.
const (
	kindPlan     = "plan"
	kindArtifact = "artifact"
)

// Runner executes the pipeline with caching. Both the CLI and the HTTP
// server use it.
//
// A Runner holds no per-run state, so one Runner may serve concurrent runs
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the DefaultKeyer and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute plans img and renders the requested formats.
//
// A PLAN_EXHAUSTED or TIMEOUT error is returned together with a complete
// Result for the partial plan.
func (r *Runner) Execute(ctx context.Context, img *image.Gray, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Plan
	planStart := time.Now()
	doc, planHit, planErr := r.PlanWithCacheInfo(ctx, img, opts)
	if doc == nil {
		return nil, fmt.Errorf("plan: %w", planErr)
	}
	result.Document = doc
	result.Stats.PlanTime = time.Since(planStart)
	result.Stats.Lines = doc.Lines()
	result.Stats.Loss = doc.Loss
	result.CacheInfo.PlanHit = planHit

	r.Logger.Info("planned lines",
		"lines", doc.Lines(),
		"loss", doc.Loss,
		"cached", planHit,
		"duration", result.Stats.PlanTime)
	if planErr != nil {
		r.Logger.Warn("plan incomplete", "err", errors.UserMessage(planErr))
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, planErr
}

// PlanWithCacheInfo plans img with caching and reports whether the plan came
// from the cache. Plans cut short by ctx are never cached.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, img *image.Gray, opts Options) (*sbio.Document, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForPlan(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.PlanKey(imageHash(img), opts.PlanKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if doc, err := sbio.UnmarshalJSON(data); err == nil {
			observability.Cache().OnCacheHit(ctx, kindPlan)
			if doc.Exhausted {
				return doc, true, exhaustedError(doc, opts)
			}
			return doc, true, nil
		}
		// Undecodable entries fall through and are overwritten.
	}
	observability.Cache().OnCacheMiss(ctx, kindPlan)

	doc, err := Plan(ctx, img, opts)
	if doc == nil {
		return nil, false, err
	}

	if !errors.Is(err, errors.ErrCodeTimeout) {
		if data, mErr := sbio.MarshalJSON(doc); mErr == nil {
			if r.Cache.Set(ctx, key, data, cache.TTLPlan) == nil {
				observability.Cache().OnCacheSet(ctx, kindPlan, len(data))
			}
		}
	}
	return doc, false, err
}

// Plan is PlanWithCacheInfo without the cache hit info.
func (r *Runner) Plan(ctx context.Context, img *image.Gray, opts Options) (*sbio.Document, error) {
	doc, _, err := r.PlanWithCacheInfo(ctx, img, opts)
	return doc, err
}

// RenderWithCacheInfo renders doc with caching. The hit flag is set when no
// image format had to be rendered. JSON is cheap and carries the document
// ID, so it is never cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *sbio.Document, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	planHash := documentHash(doc)
	artifacts := make(map[string][]byte, len(opts.Formats))

	var missing []string
	hit := true
	for _, format := range opts.Formats {
		if format != FormatJSON {
			key := r.Keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format))
			if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
				observability.Cache().OnCacheHit(ctx, kindArtifact)
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, kindArtifact)
			hit = false
		}
		missing = append(missing, format)
	}

	if len(missing) > 0 {
		sub := opts
		sub.Formats = missing
		rendered, err := Render(ctx, doc, sub)
		if err != nil {
			return nil, false, err
		}
		for format, data := range rendered {
			artifacts[format] = data
			if format == FormatJSON {
				continue
			}
			key := r.Keyer.ArtifactKey(planHash, opts.ArtifactKeyOpts(format))
			if r.Cache.Set(ctx, key, data, cache.TTLArtifact) == nil {
				observability.Cache().OnCacheSet(ctx, kindArtifact, len(data))
			}
		}
	}

	return artifacts, hit && len(missing) < len(opts.Formats), nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, doc *sbio.Document, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// imageHash hashes the image dimensions and pixels.
func imageHash(img *image.Gray) string {
	src := plan.SourceFromGray(img)
	buf := fmt.Appendf(nil, "%dx%d:", src.Width, src.Height)
	return cache.Hash(append(buf, src.Pix...))
}

// documentHash hashes the drawable content of doc, ignoring its ID and
// creation time.
func documentHash(doc *sbio.Document) string {
	data, _ := json.Marshal(struct {
		Width   int          `json:"width"`
		Height  int          `json:"height"`
		Anchors [][2]float64 `json:"anchors"`
		Order   []int        `json:"order"`
		Opacity float64      `json:"opacity"`
	}{doc.Width, doc.Height, doc.Anchors, doc.Order, doc.LineOpacity})
	return cache.Hash(data)
}
