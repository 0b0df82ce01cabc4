package runtime

import (
	"sort"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// Assignment binds an existing token to a destination cell.
type Assignment struct {
	Token domain.TokenID `json:"token"`
	Label string         `json:"label"`
	From  domain.Cell    `json:"from"`
	To    domain.Cell    `json:"to"`
}

// Plan is the output of one resolution pass.
type Plan struct {
	// Stay lists tokens that already sit on a needed cell.
	Stay []Assignment `json:"stay,omitempty"`
	// Moves lists tokens relocated to a new cell.
	Moves []Assignment `json:"moves,omitempty"`
	// Creates lists (label, cell) pairs no free token could serve.
	Creates []domain.Placement `json:"creates,omitempty"`
	// Discards lists tokens that are no longer needed, in scan order.
	Discards []domain.TokenID `json:"discards,omitempty"`
}

// IsNoop reports whether applying the plan changes nothing.
func (p Plan) IsNoop() bool {
	return len(p.Moves) == 0 && len(p.Creates) == 0 && len(p.Discards) == 0
}

// Resolve computes the minimal-disturbance assignment of tokens to the target matrix.
//
// Phases run in strict order: stability (tokens already on a needed cell stay),
// reuse by relocation (hint condition, then squared grid distance, then scan order),
// creation (needs nobody could serve) and discard (tokens never assigned).
// Tokens are considered in ascending ID order regardless of input order and are matched
// by their logical cell (see domain.Token.Logical). Tokens without a logical cell are
// never reused.
func Resolve(tokens []domain.Token, target domain.Matrix, hints domain.Hints) Plan {
	scan := make([]domain.Token, len(tokens))
	copy(scan, tokens)
	sort.Slice(scan, func(i, j int) bool { return scan[i].ID < scan[j].ID })

	needed := target.Clone()
	assigned := make([]bool, len(scan))
	var plan Plan

	// 1. Stability
	for i, t := range scan {
		cell, ok := t.Logical()
		if !ok {
			continue
		}
		if takeLabel(needed, cell, t.Label) {
			assigned[i] = true
			plan.Stay = append(plan.Stay, Assignment{Token: t.ID, Label: t.Label, From: cell, To: cell})
		}
	}

	// 2. Reuse by relocation, 3. Creation
	for file, col := range needed {
		for rank, sq := range col {
			to := domain.Cell{File: file, Rank: rank}
			for _, label := range sq {
				best := pick(scan, assigned, label, to, hints[label])
				if best < 0 {
					plan.Creates = append(plan.Creates, domain.Placement{Label: label, Cell: to})
					continue
				}
				assigned[best] = true
				from, _ := scan[best].Logical()
				plan.Moves = append(plan.Moves, Assignment{Token: scan[best].ID, Label: label, From: from, To: to})
			}
		}
	}

	// 4. Discard
	for i, t := range scan {
		if !assigned[i] {
			plan.Discards = append(plan.Discards, t.ID)
		}
	}
	return plan
}

// pick returns the index of the best free token of label for destination to, or -1.
func pick(scan []domain.Token, assigned []bool, label string, to domain.Cell, hint domain.Hint) int {
	best, bestDist, bestPreferred := -1, 0, false
	for i, t := range scan {
		if assigned[i] || t.Label != label {
			continue
		}
		from, ok := t.Logical()
		if !ok {
			continue
		}
		preferred := hint.Prefers(from, to)
		dist := from.DistanceSquared(to)
		switch {
		case best < 0:
		case preferred && !bestPreferred:
		case preferred == bestPreferred && dist < bestDist:
		default:
			continue
		}
		best, bestDist, bestPreferred = i, dist, preferred
	}
	return best
}

// takeLabel removes one occurrence of label from the square at c.
func takeLabel(m domain.Matrix, c domain.Cell, label string) bool {
	sq := m.At(c)
	for i, l := range sq {
		if l == label {
			m[c.File][c.Rank] = append(sq[:i:i], sq[i+1:]...)
			return true
		}
	}
	return false
}
