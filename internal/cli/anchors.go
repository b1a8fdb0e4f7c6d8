package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stringbean/pkg/core/anchors"
	"github.com/matzehuels/stringbean/pkg/core/raster"
	"github.com/matzehuels/stringbean/pkg/pipeline"
)

// anchorsOpts holds the flags of the anchors command.
type anchorsOpts struct {
	shape  string
	count  int
	width  int
	height int
	radius float64
	json   bool
}

// anchorsCommand creates the anchors command for inspecting anchor layouts.
func (c *CLI) anchorsCommand() *cobra.Command {
	opts := anchorsOpts{
		shape:  pipeline.DefaultShape,
		count:  pipeline.DefaultAnchors,
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "anchors",
		Short: "Print generated anchor positions",
		Long: `Print generated anchor positions.

Prints the anchor layout 'plan' would use for an image of the given size,
as a table or, with --json, as a JSON array of [x, y] pairs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateShape(opts.shape); err != nil {
				return err
			}
			ps, err := anchors.Generate(opts.shape, opts.count, opts.width, opts.height, opts.radius)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("generated anchors", "shape", opts.shape, "count", len(ps))
			if opts.json {
				return writeAnchorsJSON(ps)
			}
			printAnchorTable(ps)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.shape, "shape", opts.shape, "anchor layout: circle, rectangle")
	cmd.Flags().IntVarP(&opts.count, "anchors", "a", opts.count, "number of anchors")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "image width")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "image height")
	cmd.Flags().Float64VarP(&opts.radius, "radius", "r", 0, "circle radius (0 for the largest that fits)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of a table")

	return cmd
}

func writeAnchorsJSON(ps []raster.Position) error {
	pairs := make([][2]float64, len(ps))
	for i, p := range ps {
		pairs[i] = [2]float64{p.X, p.Y}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pairs)
}

func printAnchorTable(ps []raster.Position) {
	rows := make([][]string, len(ps))
	for i, p := range ps {
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.X, 'f', 2, 64),
			strconv.FormatFloat(p.Y, 'f', 2, 64),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "x", "y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})

	fmt.Println(t.Render())
	printDetail("%d anchors", len(ps))
}
