package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/matelas/pkg/tufting"
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var p tufting.Params

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Explore layouts interactively in the terminal",
		Long: `Explore layouts interactively in the terminal.

Select a parameter with the arrow keys (or j/k) and adjust it with left/right
(or h/l). The grid is recomputed and redrawn on every change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			spacing := c.Config.Layout.Spacing()
			if !flags.Changed("min-dist-x") {
				p.MinDistX = spacing.MinDistX
			}
			if !flags.Changed("min-dist-y") {
				p.MinDistY = spacing.MinDistY
			}
			if !flags.Changed("edge-distance") {
				p.EdgeDistance = spacing.EdgeDistance
			}

			model := NewPreviewModel(p, c.Config.Layout.MaxPoints)
			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("run preview: %w", err)
			}

			if m, ok := final.(PreviewModel); ok && m.Layout != nil {
				printSuccess("%s: %d points", m.Layout.Params, m.Layout.Count())
				printNextStep("Export", fmt.Sprintf("%s layout --width %g --height %g --min-dist-x %g --min-dist-y %g --edge-distance %g -f csv -o %s",
					appName, m.Params.Width, m.Params.Height, m.Params.MinDistX, m.Params.MinDistY, m.Params.EdgeDistance, "points.csv"))
			}
			return nil
		},
	}

	defaults := tufting.DefaultSpacing()
	cmd.Flags().Float64Var(&p.Width, "width", 220, "initial rectangle width in cm")
	cmd.Flags().Float64Var(&p.Height, "height", 240, "initial rectangle height in cm")
	cmd.Flags().Float64Var(&p.MinDistX, "min-dist-x", defaults.MinDistX, "initial minimum horizontal spacing in cm")
	cmd.Flags().Float64Var(&p.MinDistY, "min-dist-y", defaults.MinDistY, "initial minimum vertical spacing in cm")
	cmd.Flags().Float64Var(&p.EdgeDistance, "edge-distance", defaults.EdgeDistance, "initial edge margin in cm")

	return cmd
}
