package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/internal/presentation/graph"
	"github.com/aretw0/boardwalk/internal/presentation/tui"
)

var planCmd = &cobra.Command{
	Use:   "plan <from> <to>",
	Short: "Show how tokens are reassigned between two positions",
	Long: `Places the first position on a board, then resolves the second one and prints
the plan: which tokens stay, which move, which are created and which are discarded.

Formats:
- pretty (default): markdown rendered for the terminal.
- markdown: raw markdown.
- mermaid: a flowchart of the token relocations.
- json: the plan as JSON.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		ctx := cmd.Context()

		b, err := a.newBoard(boardwalk.WithAnimation(false))
		if err != nil {
			return err
		}
		if _, err := b.ResolvePosition(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to place %q: %w", args[0], err)
		}
		if _, err := settle(ctx, b, 1000); err != nil {
			return err
		}

		before := b.Tokens()
		res, err := b.ResolvePosition(ctx, args[1])
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", args[1], err)
		}

		out := cmd.OutOrStdout()
		g := b.Geometry()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Plan)
		case "mermaid":
			fmt.Fprint(out, graph.GenerateMermaid(g, res.Plan, &graph.PlanOverlay{Tokens: before}))
			return nil
		case "markdown":
			fmt.Fprint(out, tui.PlanMarkdown(g, res.Plan))
			return nil
		case "pretty":
			rendered, err := tui.NewRenderer()(tui.PlanMarkdown(g, res.Plan))
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		default:
			return fmt.Errorf("unknown format %q: use pretty, markdown, mermaid or json", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringP("format", "f", "pretty", "Output format: pretty, markdown, mermaid, json")
}
