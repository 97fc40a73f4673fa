package cli

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/matzehuels/matelas/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web form",
		Long: `Run the HTTP API and web form.

The server uses the cache backend from the config file (memory by default).
It shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, :8000)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	runner, err := c.newRunner(ctx, false, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	ln, err := net.Listen("tcp", c.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", c.Config.Server.Addr, err)
	}

	printSuccess("Serving %s", c.Config.Server.ServiceName)
	printKeyValue("URL", StyleLink.Render(serverURL(ln.Addr())))
	printKeyValue("Cache", c.Config.Cache.Backend)

	srv := server.New(c.Config, runner, loggerFromContext(ctx))
	if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// serverURL returns a browsable URL for a listen address, using localhost
// for unspecified hosts.
func serverURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String()
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
