package ports

import (
	"context"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// AssetLoader resolves a token label to its visual resource.
// The board calls Load from a background goroutine and coalesces concurrent requests for
// the same label, so implementations need not deduplicate.
type AssetLoader interface {
	// Load returns the asset for a label.
	// Returns domain.ErrAssetNotFound if the source has no resource for it.
	Load(ctx context.Context, label string) (domain.Asset, error)
}
