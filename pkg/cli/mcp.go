package cli

import (
	"fmt"
	"log"

	"github.com/aretw0/grove/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts the suite as an MCP Server, so agents can list the tree and run examples as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := a.setup(cmd)
			if err != nil {
				return err
			}
			if _, err := suite.Tree(); err != nil {
				return err
			}

			srv := mcp.NewServer(suite, mcp.WithLogger(a.logger))

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(cmd.ErrOrStderr())
				a.logger.Info("Starting MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				ctx, stop := interruptContext(cmd.Context())
				defer stop()
				if err := srv.ServeSSE(ctx, a.cfg.Listen); err != nil {
					return err
				}
				a.logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport %q: supported stdio, sse", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().StringP("listen", "l", "", "Address to listen on (only for SSE, overrides the config file)")
	return cmd
}
