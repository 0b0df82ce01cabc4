package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/boardwalk/internal/runtime"
	"github.com/aretw0/boardwalk/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return "", fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		return r.Render(markdown)
	}
}

// PlanMarkdown describes a resolution plan as a markdown document.
func PlanMarkdown(g domain.Geometry, plan runtime.Plan) string {
	var sb strings.Builder
	sb.WriteString("# Plan\n\n")
	sb.WriteString(fmt.Sprintf("**%d** stay, **%d** move, **%d** create, **%d** discard.\n",
		len(plan.Stay), len(plan.Moves), len(plan.Creates), len(plan.Discards)))

	if len(plan.Moves) > 0 {
		sb.WriteString("\n## Moves\n\n| Token | Label | From | To |\n|---|---|---|---|\n")
		for _, a := range plan.Moves {
			sb.WriteString(fmt.Sprintf("| %s | `%s` | %s | %s |\n", a.Token, a.Label, g.Label(a.From), g.Label(a.To)))
		}
	}
	if len(plan.Creates) > 0 {
		sb.WriteString("\n## Creates\n\n| Label | Square |\n|---|---|\n")
		for _, c := range plan.Creates {
			sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", c.Label, g.Label(c.Cell)))
		}
	}
	if len(plan.Discards) > 0 {
		ids := make([]string, len(plan.Discards))
		for i, id := range plan.Discards {
			ids[i] = id.String()
		}
		sb.WriteString("\n## Discards\n\n" + strings.Join(ids, ", ") + "\n")
	}
	return sb.String()
}
