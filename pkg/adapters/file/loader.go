// Package file implements an asset loader reading one file per label from a directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// DefaultPattern maps a label to "<label>.svg".
const DefaultPattern = "%s.svg"

// Loader implements ports.AssetLoader using the local filesystem.
// Labels are case-sensitive; on case-insensitive filesystems use a pattern that keeps
// "K" and "k" apart (for example "w%s.svg" with renamed files).
type Loader struct {
	BasePath string
	pattern  string
}

// Option configures the Loader.
type Option func(*Loader)

// WithPattern sets the fmt pattern mapping a label to a file name (default: DefaultPattern).
func WithPattern(pattern string) Option {
	return func(l *Loader) {
		l.pattern = pattern
	}
}

// NewLoader creates a Loader rooted at basePath.
// If basePath is empty, it defaults to "assets".
func NewLoader(basePath string, opts ...Option) *Loader {
	if basePath == "" {
		basePath = "assets"
	}
	l := &Loader{BasePath: basePath, pattern: DefaultPattern}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// fileName maps label to a file name inside BasePath, refusing anything that could
// escape the directory.
func (l *Loader) fileName(label string) (string, bool) {
	if label == "" || strings.ContainsAny(label, `/\`) || strings.Contains(label, "..") {
		return "", false
	}
	name := fmt.Sprintf(l.pattern, label)
	return name, name == filepath.Base(name)
}

// Load reads the file for label. The content type is sniffed from the bytes.
func (l *Loader) Load(ctx context.Context, label string) (domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Asset{}, err
	}
	name, ok := l.fileName(label)
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: %q is not a valid file label", domain.ErrAssetNotFound, label)
	}

	data, err := os.ReadFile(filepath.Join(l.BasePath, name))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Asset{}, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, label)
		}
		return domain.Asset{}, fmt.Errorf("failed to read asset file: %w", err)
	}

	return domain.Asset{
		Label:       label,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

// Put writes the asset bytes for label, creating the directory if needed.
func (l *Loader) Put(label string, data []byte) error {
	name, ok := l.fileName(label)
	if !ok {
		return fmt.Errorf("%q is not a valid file label", label)
	}
	if err := os.MkdirAll(l.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure asset directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.BasePath, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write asset file: %w", err)
	}
	return nil
}
