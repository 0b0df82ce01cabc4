package main

import (
	"fmt"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk/internal/presentation/tui"
	"github.com/aretw0/boardwalk/pkg/adapters/memory"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <position>...",
	Short: "Animate a sequence of positions and rotations offline",
	Long: `Resolves each position in turn on an animated board, stepping the scheduler with
fixed 16ms frames until the board is idle, then applies the requested rotations.
It reports the frames each step took and draws the final board.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		rotations, _ := cmd.Flags().GetIntSlice("rotate")
		maxFrames, _ := cmd.Flags().GetInt("max-frames")
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		b, err := a.newBoard()
		if err != nil {
			return err
		}

		for i, position := range args {
			res, err := b.ResolvePosition(ctx, position)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			frames, err := settle(ctx, b, maxFrames)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			p := res.Plan
			fmt.Fprintf(out, "step %d: stay=%d moves=%d creates=%d discards=%d frames=%d\n",
				i+1, len(p.Stay), len(p.Moves), len(p.Creates), len(p.Discards), frames)
		}

		for _, delta := range rotations {
			if err := b.Rotate(ctx, delta); err != nil {
				return err
			}
			frames, err := settle(ctx, b, maxFrames)
			if err != nil {
				return fmt.Errorf("rotate %d: %w", delta, err)
			}
			fmt.Fprintf(out, "rotate %d: angle=%g frames=%d\n", delta, b.Rotation().Angle, frames)
		}

		text, err := b.Notation()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)

		if draw, _ := cmd.Flags().GetBool("draw"); draw {
			view := tui.BoardView{Profile: termenv.NewOutput(out).Profile, Glyphs: memory.ChessGlyphs}
			fmt.Fprint(out, view.Render(b.Geometry(), b.Snapshot()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntSlice("rotate", nil, "Rotation deltas in degrees applied after the positions")
	simulateCmd.Flags().Int("max-frames", 10000, "Frames allowed per step before giving up")
	simulateCmd.Flags().Bool("draw", false, "Draw the final board")
}
