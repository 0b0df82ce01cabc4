package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk/pkg/adapters/mcp"
	"github.com/aretw0/boardwalk/pkg/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts one board as an MCP Server.
This allows AI agents to set positions, move tokens and rotate the board as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		position, _ := cmd.Flags().GetString("position")

		// Context that cancels on interrupt signal
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := a.newBoard()
		if err != nil {
			return err
		}
		if position != "" {
			if _, err := b.ResolvePosition(ctx, position); err != nil {
				return err
			}
		}

		driver := session.NewDriver(b,
			session.WithTickInterval(a.cfg.Animation.TickInterval),
			session.WithDriverLogger(a.logger),
		)
		driver.Start(ctx)
		defer driver.Stop()

		book, err := openBook(a.cfg.Positions.Dir, false)
		if err != nil {
			return err
		}
		srv := mcp.NewServer(driver, mcp.WithPositionBook(book), mcp.WithLogger(a.logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			a.logger.Info("Starting Boardwalk MCP Server (Stdio)", "board_id", b.ID)
			return srv.ServeStdio()
		case "sse":
			a.logger.Info("Starting Boardwalk MCP Server (SSE)", "port", port, "board_id", b.ID)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			a.logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return errors.New("unknown transport " + transport + ": supported stdio, sse")
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("position", "start", "Initial position (notation or preset name)")
}
