package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stringbean/pkg/core/anchors"
	"github.com/matzehuels/stringbean/pkg/core/plan"
	"github.com/matzehuels/stringbean/pkg/core/raster"
	"github.com/matzehuels/stringbean/pkg/errors"
	sbio "github.com/matzehuels/stringbean/pkg/io"
	"github.com/matzehuels/stringbean/pkg/observability"
)

// Plan runs the planner over img.
//
// If the planner runs out of eligible anchors, or ctx is done before the
// strategy completes, Plan returns the partial document together with a
// PLAN_EXHAUSTED or TIMEOUT error.
func Plan(ctx context.Context, img *image.Gray, opts Options) (*sbio.Document, error) {
	if err := opts.ValidateForPlan(); err != nil {
		return nil, err
	}

	img = sbio.Resize(img, opts.MaxSize)
	src := plan.SourceFromGray(img)

	ring, err := anchors.Generate(opts.Shape, opts.Anchors, src.Width, src.Height, opts.Radius)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidShape, err, "generate anchors")
	}
	rasterizer, _ := raster.New(opts.Rasterizer)

	planner, err := plan.New(plan.Config{
		LineWeight:       opts.Opacity,
		GapCount:         opts.Gap,
		LightnessPenalty: opts.PenaltyValue(),
		Workers:          opts.Workers,
		Logger:           opts.Logger,
	}, rasterizer, ring, src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "configure planner")
	}

	observability.Plan().OnPlanStart(ctx, len(ring), src.Width, src.Height)
	start := time.Now()

	order, runErr := planner.Run(opts.Start, strategy(ctx, opts))
	if runErr != nil && !stderrors.Is(runErr, plan.ErrExhausted) {
		observability.Plan().OnPlanComplete(ctx, 0, 0, time.Since(start), runErr)
		return nil, errors.Wrap(errors.ErrCodeInternal, runErr, "plan")
	}

	doc := sbio.NewDocument(uuid.NewString(), src.Width, src.Height, ring, order, opts.Opacity, planner.Loss())
	doc.Exhausted = runErr != nil
	if raw, err := json.Marshal(opts); err == nil {
		doc.Options = raw
	}

	switch {
	case doc.Exhausted:
		runErr = exhaustedError(doc, opts)
	case ctx.Err() != nil:
		runErr = errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "planning stopped after %d lines", doc.Lines())
	}

	observability.Plan().OnPlanComplete(ctx, doc.Lines(), doc.Loss, time.Since(start), runErr)
	opts.Logger.Debug("planned", "lines", doc.Lines(), "loss", doc.Loss, "duration", time.Since(start))
	return doc, runErr
}

// strategy builds the termination strategy for opts, stopping early when ctx
// is done.
func strategy(ctx context.Context, opts Options) plan.Strategy {
	var s plan.Strategy
	switch opts.Strategy {
	case StrategyLoss:
		l := plan.NewLossThreshold(opts.LossWait, opts.TargetLoss)
		l.MinWait = min(l.MinWait, opts.LossWait)
		s = l
	default:
		s = plan.FixedCount(opts.Chords)
	}

	s = plan.WithContext(ctx, s)
	if opts.Progress != nil {
		s = plan.Observe(s, opts.Progress)
	}
	return s
}

func exhaustedError(doc *sbio.Document, opts Options) error {
	last := doc.Order[len(doc.Order)-1]
	return errors.Wrap(errors.ErrCodePlanExhausted, plan.ErrExhausted,
		"no eligible anchor from %d after %d lines (gap %d, %d anchors)", last, doc.Lines(), opts.Gap, len(doc.Anchors))
}
