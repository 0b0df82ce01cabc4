package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/boardwalk/internal/runtime"
	"github.com/aretw0/boardwalk/pkg/domain"
)

// PlanOverlay contains board state used to annotate the plan graph.
type PlanOverlay struct {
	// Tokens locates the discarded tokens. Discards without a known cell are grouped.
	Tokens []domain.Token
	// Focus highlights one square label.
	Focus string
}

// GenerateMermaid produces a Mermaid flowchart of a resolution plan.
// Squares are nodes and token relocations are edges. It applies semantic styling:
// - Creations start at a ((Circle)) spawn node
// - Discards end at a [[Subroutine]] bin node
// - Stays are self-loops drawn with a dotted arrow
func GenerateMermaid(g domain.Geometry, plan runtime.Plan, overlay *PlanOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	squares := make(map[string]bool)
	var edges []string
	node := func(c domain.Cell) string {
		label := g.Label(c)
		squares[label] = true
		return sanitizeMermaidID(label)
	}

	if len(plan.Creates) > 0 {
		sb.WriteString("    spawn((\"new\"))\n")
	}
	if len(plan.Discards) > 0 {
		sb.WriteString("    bin[[\"discard\"]]\n")
	}

	for _, a := range plan.Stay {
		id := node(a.To)
		edges = append(edges, fmt.Sprintf("    %s -. \"%s\" .-> %s\n", id, escape(a.Label), id))
	}
	for _, a := range plan.Moves {
		edges = append(edges, fmt.Sprintf("    %s -- \"%s\" --> %s\n", node(a.From), escape(a.Label), node(a.To)))
	}
	for _, c := range plan.Creates {
		edges = append(edges, fmt.Sprintf("    spawn -- \"%s\" --> %s\n", escape(c.Label), node(c.Cell)))
	}

	located := make(map[domain.TokenID]domain.Token)
	if overlay != nil {
		for _, t := range overlay.Tokens {
			located[t.ID] = t
		}
	}
	unknown := 0
	for _, id := range plan.Discards {
		t, ok := located[id]
		if !ok {
			unknown++
			continue
		}
		if c, placed := t.Logical(); placed {
			edges = append(edges, fmt.Sprintf("    %s -- \"%s\" --> bin\n", node(c), escape(t.Label)))
		} else {
			unknown++
		}
	}
	if unknown > 0 {
		edges = append(edges, fmt.Sprintf("    spawn -. \"%d unplaced\" .-> bin\n", unknown))
		if len(plan.Creates) == 0 {
			sb.WriteString("    spawn((\"new\"))\n")
		}
	}

	labels := make([]string, 0, len(squares))
	for l := range squares {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", sanitizeMermaidID(l), l))
	}
	for _, e := range edges {
		sb.WriteString(e)
	}

	if overlay != nil && overlay.Focus != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s focus;\n", sanitizeMermaidID(strings.ToUpper(overlay.Focus))))
	}

	return sb.String()
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	// Square labels start with a letter, prefix keeps them clear of Mermaid keywords (e.g. "end").
	return "sq_" + strings.ToUpper(id)
}
