package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk/internal/validator"
	loamAdapter "github.com/aretw0/boardwalk/pkg/adapters/loam"
	"github.com/aretw0/boardwalk/pkg/notation"
	"github.com/aretw0/boardwalk/pkg/ports"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Manage the position book",
	Long: `Lists, shows and saves named positions. The book is the directory configured
under positions.dir (or --dir): one Markdown document per position, with the
notation in the frontmatter and the description in the body.`,
}

var positionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored positions and built-in presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := bookFor(cmd, false)
		if err != nil {
			return err
		}
		names, err := book.List(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		for _, name := range notation.Presets() {
			fmt.Fprintf(out, "%s (preset)\n", name)
		}
		return nil
	},
}

var positionsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := bookFor(cmd, false)
		if err != nil {
			return err
		}
		p, err := book.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, p.Notation)
		if p.Description != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, p.Description)
		}
		return nil
	},
}

var positionsSaveCmd = &cobra.Command{
	Use:   "save <name> <notation>",
	Short: "Validate and store a position",
	Args:  cobra.ExactArgs(2),
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
		if _, err := codec.Decode(args[1]); err != nil {
			return err
		}

		book, err := bookFor(cmd, true)
		if err != nil {
			return err
		}
		saver, ok := book.(*loamAdapter.Book)
		if !ok {
			return errors.New("saving requires a position directory: set positions.dir or --dir")
		}
		description, _ := cmd.Flags().GetString("description")
		if err := saver.Save(cmd.Context(), ports.Position{Name: args[0], Notation: args[1], Description: description}); err != nil {
			return err
		}
		a.logger.Info("Position saved", "name", args[0])
		return nil
	},
}

var positionsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every stored position decodes on the configured board",
	Args:  cobra.NoArgs,
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
		book, err := bookFor(cmd, false)
		if err != nil {
			return err
		}
		if err := validator.ValidateBook(cmd.Context(), book, codec); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All positions are valid")
		return nil
	},
}

func bookFor(cmd *cobra.Command, writable bool) (ports.PositionBook, error) {
	a, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	dir := a.cfg.Positions.Dir
	if flag, _ := cmd.Flags().GetString("dir"); flag != "" {
		dir = flag
	}
	return openBook(dir, writable)
}

func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.AddCommand(positionsListCmd, positionsShowCmd, positionsSaveCmd, positionsValidateCmd)

	positionsCmd.PersistentFlags().String("dir", "", "Position book directory (overrides positions.dir)")
	positionsSaveCmd.Flags().String("description", "", "Free text stored in the document body")
}
