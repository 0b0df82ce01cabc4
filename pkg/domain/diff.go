package domain

import "sort"

// Scene is the renderer-facing snapshot of a board: every token plus the stage transform.
type Scene struct {
	BoardID string `json:"board_id"`

	// Tokens is sorted by ID.
	Tokens []Token `json:"tokens"`

	// StageRotation is applied to the whole board layer.
	StageRotation float64 `json:"stage_rotation"`
	// CounterRotation is applied to the token layer and border-label layer.
	CounterRotation float64 `json:"counter_rotation"`
	// StageScale is the effective scale (base scale times the phase scale).
	StageScale float64 `json:"stage_scale"`
}

// TokenMove reports a token's new pixel position and its recorded cell. Cell is only
// meaningful when Placed is true.
type TokenMove struct {
	ID       TokenID `json:"id"`
	Position Point   `json:"position"`
	Cell     Cell    `json:"cell"`
	Placed   bool    `json:"placed"`
}

// FrameDiff represents the changes between two scenes.
// It is what a renderer consumes; unchanged parts are omitted.
type FrameDiff struct {
	BoardID string `json:"board_id"`

	// Added contains tokens that appeared since the previous scene.
	Added []Token `json:"added,omitempty"`
	// Removed contains IDs of tokens that left the board.
	Removed []TokenID `json:"removed,omitempty"`
	// Moved contains tokens whose pixel position or recorded cell changed.
	Moved []TokenMove `json:"moved,omitempty"`

	StageRotation   *float64 `json:"stage_rotation,omitempty"`
	CounterRotation *float64 `json:"counter_rotation,omitempty"`
	StageScale      *float64 `json:"stage_scale,omitempty"`
}

// Diff calculates the difference between oldScene and newScene.
// If oldScene is nil, it returns a diff representing the entire newScene (initial load).
// It returns nil when nothing changed.
func Diff(oldScene, newScene *Scene) *FrameDiff {
	if newScene == nil {
		return nil
	}

	diff := &FrameDiff{BoardID: newScene.BoardID}

	// 1. Tokens
	old := make(map[TokenID]Token)
	if oldScene != nil {
		for _, t := range oldScene.Tokens {
			old[t.ID] = t
		}
	}
	seen := make(map[TokenID]bool, len(newScene.Tokens))
	for _, t := range newScene.Tokens {
		seen[t.ID] = true
		prev, exists := old[t.ID]
		if !exists {
			diff.Added = append(diff.Added, t)
			continue
		}
		if prev.Position != t.Position || prev.Cell != t.Cell || prev.Placed != t.Placed {
			diff.Moved = append(diff.Moved, TokenMove{ID: t.ID, Position: t.Position, Cell: t.Cell, Placed: t.Placed})
		}
	}
	if oldScene != nil {
		for _, t := range oldScene.Tokens {
			if !seen[t.ID] {
				diff.Removed = append(diff.Removed, t.ID)
			}
		}
		sort.Slice(diff.Removed, func(i, j int) bool { return diff.Removed[i] < diff.Removed[j] })
	}

	// 2. Stage transform
	if oldScene == nil || oldScene.StageRotation != newScene.StageRotation {
		v := newScene.StageRotation
		diff.StageRotation = &v
	}
	if oldScene == nil || oldScene.CounterRotation != newScene.CounterRotation {
		v := newScene.CounterRotation
		diff.CounterRotation = &v
	}
	if oldScene == nil || oldScene.StageScale != newScene.StageScale {
		v := newScene.StageScale
		diff.StageScale = &v
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *FrameDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Moved) == 0 &&
		d.StageRotation == nil &&
		d.CounterRotation == nil &&
		d.StageScale == nil
}
