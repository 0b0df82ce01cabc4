package ports

import (
	"context"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// Renderer consumes the scene changes produced by the board.
// Render is called on the board's logical thread and should return quickly.
// An error is logged by the board and never interrupts animation.
type Renderer interface {
	Render(ctx context.Context, diff *domain.FrameDiff) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, diff *domain.FrameDiff) error

// Render calls f(ctx, diff).
func (f RendererFunc) Render(ctx context.Context, diff *domain.FrameDiff) error {
	return f(ctx, diff)
}
