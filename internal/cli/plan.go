package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/stringbean/pkg/errors"
	sbio "github.com/matzehuels/stringbean/pkg/io"
	"github.com/matzehuels/stringbean/pkg/pipeline"
)

// planFlags holds the raw flag values of the plan command. Only flags the
// user set are applied on top of the config file.
type planFlags struct {
	config      string
	formats     string
	output      string
	noCache     bool
	interactive bool

	chords      int
	opacity     float64
	anchors     int
	gap         int
	radius      float64
	penalty     float64
	start       int
	shape       string
	strategy    string
	targetLoss  float64
	lossWait    int
	rasterizer  string
	workers     int
	maxSize     int
	width       int
	height      int
	strokeWidth float64
	background  bool
}

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan [image]",
		Short: "Plan string art for an image",
		Long: `Plan string art for an image.

The plan command chooses the sequence of anchors the thread visits and
renders the result. Use --format json to save the plan itself; 'render'
can draw a saved plan again at any size.

Options can be loaded from a JSON, TOML or YAML file with --config.
Flags override values from the file.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd.Flags())
			if err != nil {
				return err
			}
			return c.runPlan(cmd.Context(), args[0], opts, f)
		},
	}

	f.bind(cmd.Flags())

	return cmd
}

// bind registers the plan flags on flags.
func (f *planFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.config, "config", "", "load options from a .json, .toml or .yaml file")
	flags.StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	flags.StringVar(&f.output, "out", "", "output file (single format) or base path (multiple)")
	flags.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	flags.BoolVarP(&f.interactive, "interactive", "i", false, "show an interactive progress bar")

	flags.IntVarP(&f.chords, "chords", "c", pipeline.DefaultChords, "number of lines to draw")
	flags.Float64VarP(&f.opacity, "opacity", "o", pipeline.DefaultOpacity, "darkness of one line, in [0, 1)")
	flags.IntVarP(&f.anchors, "anchors", "a", pipeline.DefaultAnchors, "number of anchors on the frame")
	flags.IntVarP(&f.gap, "gap", "g", 0, "skip this many neighbours on each side of the current anchor")
	flags.Float64VarP(&f.radius, "radius", "r", 0, "circle radius in pixels (0 for the largest that fits)")
	flags.Float64VarP(&f.penalty, "penalty", "p", pipeline.DefaultPenalty, "cost of darkening pixels that are already dark enough")
	flags.IntVar(&f.start, "start", 0, "index of the first anchor")
	flags.StringVar(&f.shape, "shape", pipeline.DefaultShape, "anchor layout: circle, rectangle")
	flags.StringVar(&f.strategy, "strategy", pipeline.DefaultStrategy, "termination: count (fixed line count), loss (stop when loss stops improving)")
	flags.Float64Var(&f.targetLoss, "target-loss", 0, "loss strategy: stop once loss falls below this value")
	flags.IntVar(&f.lossWait, "loss-wait", pipeline.DefaultLossWait, "loss strategy: lines between loss checks")
	flags.StringVar(&f.rasterizer, "rasterizer", pipeline.DefaultRasterizer, "line rasterizer: grid, antialiased")
	flags.IntVar(&f.workers, "workers", 0, "parallel candidate scoring (0 for one per CPU)")
	flags.IntVar(&f.maxSize, "max-size", 0, "downscale so the longer image side is at most this (0 keeps the size)")
	flags.IntVar(&f.width, "width", pipeline.DefaultWidth, "output width")
	flags.IntVar(&f.height, "height", pipeline.DefaultHeight, "output height")
	flags.Float64Var(&f.strokeWidth, "stroke-width", pipeline.DefaultStrokeWidth, "line width in output pixels")
	flags.BoolVar(&f.background, "background", false, "paint a white background (always on for png)")
}

// options loads the config file, if any, and applies explicitly set flags.
func (f *planFlags) options(flags *pflag.FlagSet) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.config != "" {
		loaded, err := pipeline.LoadOptions(f.config)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("chords", func() { opts.Chords = f.chords })
	set("opacity", func() { opts.Opacity = f.opacity })
	set("anchors", func() { opts.Anchors = f.anchors })
	set("gap", func() { opts.Gap = f.gap })
	set("radius", func() { opts.Radius = f.radius })
	set("penalty", func() { p := f.penalty; opts.Penalty = &p })
	set("start", func() { opts.Start = f.start })
	set("shape", func() { opts.Shape = f.shape })
	set("strategy", func() { opts.Strategy = f.strategy })
	set("target-loss", func() { opts.TargetLoss = f.targetLoss })
	set("loss-wait", func() { opts.LossWait = f.lossWait })
	set("rasterizer", func() { opts.Rasterizer = f.rasterizer })
	set("workers", func() { opts.Workers = f.workers })
	set("max-size", func() { opts.MaxSize = f.maxSize })
	set("format", func() { opts.Formats = parseFormats(f.formats) })
	set("width", func() { opts.Width = f.width })
	set("height", func() { opts.Height = f.height })
	set("stroke-width", func() { opts.StrokeWidth = f.strokeWidth })
	set("background", func() { opts.Background = f.background })

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// runPlan plans the image, renders the requested formats and writes them.
// An exhausted plan is still written, with a warning.
func (c *CLI) runPlan(ctx context.Context, input string, opts pipeline.Options, f planFlags) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	img, err := sbio.LoadImage(input)
	if err != nil {
		return fmt.Errorf("load image %s: %w", input, err)
	}
	logger.Debug("loaded image", "path", input, "width", img.Rect.Dx(), "height", img.Rect.Dy())

	runner, err := c.newRunner(f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	timer := newStageTimer(logger)
	var (
		doc     *sbio.Document
		hit     bool
		planErr error
	)
	if f.interactive {
		doc, hit, planErr = runInteractive(ctx, runner, img, opts, filepath.Base(input))
	} else {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Planning %d lines...", opts.Chords))
		spinner.Start()
		doc, hit, planErr = runner.PlanWithCacheInfo(ctx, img, opts)
		spinner.Stop()
	}

	switch {
	case doc == nil:
		printError("Planning failed")
		return planErr
	case errors.Is(planErr, errors.ErrCodeTimeout):
		// Interrupted: report what was planned and let main exit with 130.
		printWarning("Planning interrupted after %d lines", doc.Lines())
		return planErr
	case errors.Is(planErr, errors.ErrCodePlanExhausted):
		printWarning("%s", errors.UserMessage(planErr))
	case planErr != nil:
		return planErr
	}
	timer.done(fmt.Sprintf("Planned %d lines", doc.Lines()))

	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	printSuccess("Planned %s", input)
	printPlanStats(doc.Lines(), doc.Loss, doc.Exhausted, hit && renderHit)
	written, err := writeArtifacts(artifacts, opts.Formats, input, f.output)
	if err != nil {
		return err
	}
	if path, ok := written[pipeline.FormatJSON]; ok {
		printNextStep("Render again", fmt.Sprintf("%s render %s --format png", appName, path))
	}
	return nil
}

// writeArtifacts writes each format to its output path, in the order the
// formats were requested, and returns the paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) (map[string]string, error) {
	written := make(map[string]string, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return written, fmt.Errorf("missing %s artifact", format)
		}
		path := outputPath(output, input, format, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written[format] = path
		printFile(path)
	}
	return written, nil
}
