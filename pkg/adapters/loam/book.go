// Package loam implements a position book backed by a Loam document repository.
//
// Each position is a Markdown (or JSON/YAML) document: the frontmatter carries the
// name and notation, the body is the description.
package loam

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/ports"
)

// Book adapts a Loam repository to the ports.PositionBook interface.
type Book struct {
	raw  core.Repository
	Repo *loam.TypedRepository[PositionMetadata]
}

// New creates a new Loam position book.
func New(repo core.Repository) *Book {
	return &Book{
		raw:  repo,
		Repo: loam.NewTypedRepository[PositionMetadata](repo),
	}
}

// index maps position names to Loam document IDs.
func (b *Book) index(ctx context.Context) (map[string]string, error) {
	docs, err := b.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make(map[string]string, len(docs))
	for _, doc := range docs {
		name := positionName(doc.ID, doc.Data)

		// Collision Detection
		if existing, ok := ids[name]; ok {
			return nil, fmt.Errorf("collision detected: position '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		ids[name] = doc.ID
	}
	return ids, nil
}

// Get retrieves a position by name.
func (b *Book) Get(ctx context.Context, name string) (ports.Position, error) {
	ids, err := b.index(ctx)
	if err != nil {
		return ports.Position{}, err
	}
	id, ok := ids[name]
	if !ok {
		return ports.Position{}, fmt.Errorf("%w: %s", domain.ErrPositionNotFound, name)
	}

	doc, err := b.Repo.Get(ctx, id)
	if err != nil {
		return ports.Position{}, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	description := strings.TrimSpace(doc.Content)
	notation := strings.TrimSpace(doc.Data.Notation)
	if notation == "" {
		notation, description = splitBody(description)
	}
	if notation == "" {
		return ports.Position{}, fmt.Errorf("position %s has no notation", name)
	}

	return ports.Position{
		Name:        name,
		Notation:    notation,
		Description: description,
	}, nil
}

// List returns all position names, sorted.
func (b *Book) List(ctx context.Context) ([]string, error) {
	ids, err := b.index(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

// Save writes a position as "<name>.md" with YAML frontmatter.
func (b *Book) Save(ctx context.Context, p ports.Position) error {
	if p.Name == "" {
		return fmt.Errorf("position missing name")
	}

	front, err := yaml.Marshal(PositionMetadata{Notation: p.Notation})
	if err != nil {
		return fmt.Errorf("failed to marshal position metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(front)
	buf.WriteString("---\n")
	if p.Description != "" {
		buf.WriteString(p.Description)
		buf.WriteString("\n")
	}

	doc := core.Document{ID: p.Name + ".md", Content: buf.String()}
	if err := b.raw.Save(ctx, doc); err != nil {
		return fmt.Errorf("loam save failed for %s: %w", p.Name, err)
	}
	return nil
}

func positionName(docID string, meta PositionMetadata) string {
	if meta.Name != "" {
		return meta.Name
	}
	return trimExtension(docID)
}

// splitBody returns the first non-blank line as notation and the rest as description.
func splitBody(body string) (string, string) {
	first, rest, _ := strings.Cut(body, "\n")
	return strings.TrimSpace(first), strings.TrimSpace(rest)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
