package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	sbio "github.com/matzehuels/stringbean/pkg/io"
	"github.com/matzehuels/stringbean/pkg/pipeline"
)

// renderCommand creates the render command for drawing a saved plan.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render [plan.json]",
		Short: "Render a saved plan",
		Long: `Render a saved plan.

The render command takes a plan.json file (produced by 'plan --format json')
and draws it as SVG, PNG or PDF. The plan fixes every line, so rendering
at another size or stroke width needs no replanning.

PDF output requires rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVar(&output, "out", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "output width")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "output height")
	cmd.Flags().Float64Var(&opts.StrokeWidth, "stroke-width", opts.StrokeWidth, "line width in output pixels")
	cmd.Flags().BoolVar(&opts.Background, "background", false, "paint a white background (always on for png)")

	return cmd
}

// runRender loads the plan and renders it.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	doc, err := sbio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load plan %s: %w", input, err)
	}
	logger.Debug("loaded plan", "path", input, "lines", doc.Lines(), "anchors", len(doc.Anchors))

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d lines...", doc.Lines()))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	printSuccess("Rendered %s", input)
	printPlanStats(doc.Lines(), doc.Loss, doc.Exhausted, cacheHit)
	_, err = writeArtifacts(artifacts, opts.Formats, input, output)
	return err
}
