package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk/internal/presentation/tui"
	"github.com/aretw0/boardwalk/pkg/adapters/memory"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/notation"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <notation|preset>",
	Short: "Decode a position and draw the board",
	Long: `Decodes a position written in rank notation (or a preset name such as "start")
using the board shape from the configuration, and draws it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		g := a.cfg.Geometry()
		codec, err := notation.NewCodec(g.Files, g.Ranks)
		if err != nil {
			return err
		}
		m, err := codec.Parse(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}

		view := tui.BoardView{Profile: termenv.NewOutput(out).Profile}
		if glyphs, _ := cmd.Flags().GetBool("glyphs"); glyphs {
			view.Glyphs = memory.ChessGlyphs
		}
		view.Focus, _ = cmd.Flags().GetString("focus")
		fmt.Fprint(out, view.Render(g, m))
		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a JSON board matrix into rank notation",
	Long: `Reads a file-major JSON matrix (matrix[file][rank] is the list of labels on that
square) from the given file, or stdin, and prints its notation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}

		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		var m domain.Matrix
		if err := json.NewDecoder(r).Decode(&m); err != nil {
			return fmt.Errorf("failed to read matrix: %w", err)
		}

		g := a.cfg.Geometry()
		codec, err := notation.NewCodec(g.Files, g.Ranks)
		if err != nil {
			return err
		}
		text, err := codec.Encode(m)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd, encodeCmd)

	decodeCmd.Flags().Bool("json", false, "Print the decoded matrix as JSON")
	decodeCmd.Flags().Bool("glyphs", true, "Draw chess letters as Unicode glyphs")
	decodeCmd.Flags().String("focus", "", "Highlight a square, e.g. E4")
}
