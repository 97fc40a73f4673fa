package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/matelas/pkg/errors"
	"github.com/matzehuels/matelas/pkg/export"
	"github.com/matzehuels/matelas/pkg/pipeline"
	"github.com/matzehuels/matelas/pkg/tufting"
)

// formatTable prints the layout as a terminal table instead of exporting it.
const formatTable = "table"

// layoutFlags holds the values of the layout command's flags.
type layoutFlags struct {
	params    tufting.Params
	format    string
	output    string
	noCache   bool
	refresh   bool
	size      int
	distances bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the tufting layout for a rectangle",
		Long: `Compute the tufting layout for a rectangle.

Spacing flags that are not given fall back to the [layout] section of the
config file. By default the points are printed as a table; use --format to
export JSON, CSV, or an SVG/PNG preview instead.

Results are cached locally for faster subsequent runs.`,
		Example: `  matelas layout --width 220 --height 240
  matelas layout --width 160 --height 200 --edge-distance 10 -f csv -o points.csv
  matelas layout --width 220 --height 240 -f png -o preview.png --distances`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("width") || !flags.Changed("height") {
				return errors.New(errors.ErrCodeInvalidInput, "--width and --height are required")
			}
			spacing := c.Config.Layout.Spacing()
			if !flags.Changed("min-dist-x") {
				f.params.MinDistX = spacing.MinDistX
			}
			if !flags.Changed("min-dist-y") {
				f.params.MinDistY = spacing.MinDistY
			}
			if !flags.Changed("edge-distance") {
				f.params.EdgeDistance = spacing.EdgeDistance
			}
			if err := export.ValidatePreviewSize(f.size); err != nil {
				return err
			}
			if f.format != formatTable {
				return export.ValidateFormat(f.format)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), f)
		},
	}

	defaults := tufting.DefaultSpacing()
	cmd.Flags().Float64Var(&f.params.Width, "width", 0, "rectangle width in cm (required)")
	cmd.Flags().Float64Var(&f.params.Height, "height", 0, "rectangle height in cm (required)")
	cmd.Flags().Float64Var(&f.params.MinDistX, "min-dist-x", defaults.MinDistX, "minimum horizontal spacing in cm")
	cmd.Flags().Float64Var(&f.params.MinDistY, "min-dist-y", defaults.MinDistY, "minimum vertical spacing in cm")
	cmd.Flags().Float64Var(&f.params.EdgeDistance, "edge-distance", defaults.EdgeDistance, "margin between the edge and the outer buttons in cm")
	cmd.Flags().StringVarP(&f.format, "format", "f", formatTable, "output format: table, json, csv, svg, png")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: stdout; png defaults to tufting.png)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().IntVar(&f.size, "size", export.DefaultPreviewWidth, fmt.Sprintf("preview width in pixels (svg, png; at most %d)", export.MaxPreviewSize))
	cmd.Flags().BoolVar(&f.distances, "distances", false, "draw distance guides (svg, png)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return append([]string{formatTable}, export.Formats...), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runLayout computes the layout and writes it in the requested format.
func (c *CLI) runLayout(ctx context.Context, f layoutFlags) error {
	runner, err := c.newRunner(ctx, f.noCache, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Params:    f.params,
		MaxPoints: c.Config.Layout.MaxPoints,
		Size:      f.size,
		Distances: f.distances,
		Refresh:   f.refresh,
		Logger:    loggerFromContext(ctx),
	}
	if f.format != formatTable {
		opts.Formats = []string{f.format}
	}

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Computed %d points", result.Layout.Count()))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if f.format == formatTable {
		fmt.Fprintln(c.Out, renderSummary(result.Layout, result.CacheInfo.LayoutHit))
		fmt.Fprintln(c.Out, renderPointsTable(result.Layout.Points))
		return nil
	}

	output := f.output
	if output == "" && f.format == export.FormatPNG {
		output = "tufting.png"
	}
	data := result.Artifacts[f.format]
	if output == "" || output == "-" {
		_, err := c.Out.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Layout.Count(), result.Layout.RowCount(), result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	if !slices.Contains([]string{export.FormatSVG, export.FormatPNG}, f.format) {
		printNewline()
		printNextStep("Preview", fmt.Sprintf("%s preview --width %g --height %g", appName, f.params.Width, f.params.Height))
	}
	return nil
}
