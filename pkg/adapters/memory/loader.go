package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// ChessGlyphs maps the conventional chess piece letters to their Unicode glyphs.
var ChessGlyphs = map[string]string{
	"K": "♔", "Q": "♕", "R": "♖", "B": "♗", "N": "♘", "P": "♙",
	"k": "♚", "q": "♛", "r": "♜", "b": "♝", "n": "♞", "p": "♟",
}

// Loader implements ports.AssetLoader using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu     sync.RWMutex
	assets map[string]domain.Asset
}

// NewLoader creates a new in-memory loader with the provided raw data, keyed by label.
func NewLoader(data map[string]string) *Loader {
	assets := make(map[string]domain.Asset, len(data))
	for label, v := range data {
		assets[label] = domain.Asset{Label: label, ContentType: "text/plain; charset=utf-8", Data: []byte(v)}
	}
	return &Loader{assets: assets}
}

// NewFromAssets creates a new in-memory loader from domain objects.
func NewFromAssets(assets ...domain.Asset) (*Loader, error) {
	l := &Loader{assets: make(map[string]domain.Asset, len(assets))}
	for _, a := range assets {
		if a.Label == "" {
			return nil, fmt.Errorf("asset missing label")
		}
		l.assets[a.Label] = a
	}
	return l, nil
}

// Load returns the asset for label.
func (l *Loader) Load(_ context.Context, label string) (domain.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.assets[label]
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, label)
	}
	a.Data = append([]byte(nil), a.Data...)
	return a, nil
}

// Put adds or replaces the asset of a label.
func (l *Loader) Put(a domain.Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.assets[a.Label] = a
}
