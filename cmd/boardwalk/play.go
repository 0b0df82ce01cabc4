package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk/internal/presentation/tui"
	"github.com/aretw0/boardwalk/pkg/adapters/memory"
	"github.com/aretw0/boardwalk/pkg/runner"
	"github.com/aretw0/boardwalk/pkg/session"
)

var playCmd = &cobra.Command{
	Use:   "play [position]",
	Short: "Drive a board interactively from the terminal",
	Long: `Starts a clock-driven board and reads commands from stdin: set, load, move,
query, rotate, angle, scale, wait, show. Type help for the list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		// Context that cancels on interrupt signal
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := a.newBoard()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if _, err := b.ResolvePosition(ctx, args[0]); err != nil {
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

		out := cmd.OutOrStdout()
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(out)
		}
		view := tui.BoardView{Profile: termenv.NewOutput(out).Profile, Glyphs: memory.ChessGlyphs}
		console := runner.New(driver, cmd.InOrStdin(), out,
			runner.WithBoardRenderer(view.Render),
			runner.WithPositionBook(book),
			runner.WithLogger(a.logger),
		)
		return console.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}
