package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/matelas/pkg/buildinfo"
	"github.com/matzehuels/matelas/pkg/config"
	"github.com/matzehuels/matelas/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the configuration is loaded from --config (or
// $MATELAS_CONFIG) and the log level is set from --verbose or log.level.
// The logger is attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   appName,
		Short: "Matelas computes tufting button layouts for mattresses",
		Long: `Matelas computes staggered tufting button grids for rectangular mattresses.

Buttons are placed inside an edge margin, with spacing as close as possible to
the requested minimum distances. Odd rows are offset by half a column.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv(config.EnvPath)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			c.Config = cfg

			level, err := log.ParseLevel(strings.ToLower(cfg.Log.Level))
			if err != nil {
				level = LogInfo
			}
			if verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			if verbose {
				observability.NewLogHooks(c.Logger).RegisterAll()
			}

			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("config file (default: $%s)", config.EnvPath))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
