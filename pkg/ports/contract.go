package ports

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunAssetLoaderContract runs a suite of tests to verify that an AssetLoader implementation
// adheres to the defined interface contract. setup lists the labels the loader must know
// and the bytes it must return for them.
func RunAssetLoaderContract(t *testing.T, loader AssetLoader, setup map[string][]byte) {
	ctx := context.Background()

	t.Run("Load Known Labels", func(t *testing.T) {
		for label, want := range setup {
			asset, err := loader.Load(ctx, label)
			require.NoError(t, err, "Load(%q) should not return error", label)
			assert.Equal(t, label, asset.Label)
			assert.Equal(t, want, asset.Data)
		}
	})

	t.Run("Load Unknown Label", func(t *testing.T) {
		_, err := loader.Load(ctx, "no-such-label-☃")
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})

	t.Run("Concurrent Loads", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 8*len(setup))
		for label := range setup {
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(label string) {
					defer wg.Done()
					_, err := loader.Load(ctx, label)
					errs <- err
				}(label)
			}
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
	})
}
