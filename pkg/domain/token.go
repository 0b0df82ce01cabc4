package domain

import "fmt"

// TokenID identifies a placed token. IDs are assigned in creation order and never reused
// by the same board, so ascending ID order is the board's scan order.
type TokenID uint64

func (id TokenID) String() string {
	return fmt.Sprintf("t%d", uint64(id))
}

// Token is a placed piece instance.
type Token struct {
	ID    TokenID `json:"id"`
	Label string  `json:"label"`

	// Cell is the recorded cell. It is only meaningful when Placed is true; a freshly
	// created token is unassigned until its first movement completes.
	Cell   Cell `json:"cell"`
	Placed bool `json:"placed"`

	// Target is the destination of the in-flight movement, valid when Moving is true.
	Target Cell `json:"target"`
	Moving bool `json:"moving"`

	// Position is the current pixel position of the token centre.
	Position Point   `json:"position"`
	Scale    float64 `json:"scale"`

	// Asset is the visual resource delivered by the asset loader.
	Asset Asset `json:"-"`
}

// Logical returns the cell the token belongs to from the board's point of view:
// the movement target while in flight, the recorded cell otherwise.
func (t Token) Logical() (Cell, bool) {
	if t.Moving {
		return t.Target, true
	}
	return t.Cell, t.Placed
}

// Movement is a pending interpolation of a token toward a destination cell.
type Movement struct {
	Token TokenID `json:"token"`
	To    Cell    `json:"to"`
}

// Placement is a (label, cell) pair that needs a new token.
type Placement struct {
	Label string `json:"label"`
	Cell  Cell   `json:"cell"`
}

// Asset is the opaque visual resource for a label.
type Asset struct {
	Label       string `json:"label"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"-"`
}

// Hint selects a tie-break rule for relocating tokens of one label.
type Hint string

const (
	// HintNone means pure nearest-neighbour matching.
	HintNone Hint = ""
	// HintDiagonal prefers candidates on a square of the destination's parity (bishops).
	HintDiagonal Hint = "diagonal"
	// HintAligned prefers candidates sharing the destination's file or rank (rooks).
	HintAligned Hint = "aligned"
	// HintForward prefers candidates already on the destination's file (pawns).
	HintForward Hint = "forward"
)

// Valid reports whether h is a known hint.
func (h Hint) Valid() bool {
	switch h {
	case HintNone, HintDiagonal, HintAligned, HintForward:
		return true
	default:
		return false
	}
}

// Prefers evaluates the hint condition for a candidate at from moving to to.
func (h Hint) Prefers(from, to Cell) bool {
	switch h {
	case HintDiagonal:
		return from.Parity() == to.Parity()
	case HintAligned:
		return from.File == to.File || from.Rank == to.Rank
	case HintForward:
		return from.File == to.File
	default:
		return false
	}
}

// Hints maps token labels to their tie-break rule.
type Hints map[string]Hint

// ChessHints returns the conventional hints for chess piece letters.
func ChessHints() Hints {
	return Hints{
		"B": HintDiagonal, "b": HintDiagonal,
		"R": HintAligned, "r": HintAligned,
		"P": HintForward, "p": HintForward,
	}
}

// Validate rejects unknown hint names.
func (h Hints) Validate() error {
	for label, hint := range h {
		if !hint.Valid() {
			return &ConfigError{Field: "hints." + label, Reason: "unknown hint", Value: string(hint)}
		}
	}
	return nil
}
