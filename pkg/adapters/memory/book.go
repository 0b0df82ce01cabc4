package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/ports"
)

// Book implements ports.PositionBook using an in-memory map.
type Book struct {
	positions map[string]ports.Position
}

// NewBook creates a position book from name -> notation pairs.
func NewBook(data map[string]string) *Book {
	positions := make(map[string]ports.Position, len(data))
	for name, n := range data {
		positions[name] = ports.Position{Name: name, Notation: n}
	}
	return &Book{positions: positions}
}

// NewFromPositions creates a position book from domain objects.
func NewFromPositions(positions ...ports.Position) (*Book, error) {
	b := &Book{positions: make(map[string]ports.Position, len(positions))}
	for _, p := range positions {
		if p.Name == "" {
			return nil, fmt.Errorf("position missing name")
		}
		b.positions[p.Name] = p
	}
	return b, nil
}

// Get returns the position with the given name.
func (b *Book) Get(_ context.Context, name string) (ports.Position, error) {
	p, ok := b.positions[name]
	if !ok {
		return ports.Position{}, fmt.Errorf("%w: %s", domain.ErrPositionNotFound, name)
	}
	return p, nil
}

// List returns all position names.
func (b *Book) List(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(b.positions))
	for name := range b.positions {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}
