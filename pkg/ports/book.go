package ports

import "context"

// Position is a named board arrangement.
type Position struct {
	Name        string `json:"name"`
	Notation    string `json:"notation"`
	Description string `json:"description,omitempty"`
}

// PositionBook is a read-only catalogue of named positions.
type PositionBook interface {
	// Get returns the position with the given name.
	// Returns domain.ErrPositionNotFound if it does not exist.
	Get(ctx context.Context, name string) (Position, error)

	// List returns the names of all positions, sorted.
	List(ctx context.Context) ([]string, error)
}
