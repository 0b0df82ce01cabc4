package runtime

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/ports"
)

// Creation is the single-resolution handle of a token creation requested by a resolution.
// The token ID is reserved when the creation is requested, so scan order follows request
// order regardless of which asset arrives first. The handle resolves with that ID once
// the asset arrives and the token is queued, with an error wrapping domain.ErrAssetLoad if
// the loader failed, or with domain.ErrSuperseded if a newer resolution replaced it first.
type Creation struct {
	Placement domain.Placement

	generation uint64
	reserved   domain.TokenID
	done       chan struct{}
	token      domain.TokenID
	err        error
}

func newCreation(p domain.Placement, generation uint64, id domain.TokenID) *Creation {
	return &Creation{Placement: p, generation: generation, reserved: id, done: make(chan struct{})}
}

// Done is closed once the creation is resolved.
func (c *Creation) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome. It is only meaningful after Done is closed.
func (c *Creation) Result() (domain.TokenID, error) {
	return c.token, c.err
}

// Wait blocks until the creation resolves or ctx ends.
// It must not be called from the goroutine that ticks the board.
func (c *Creation) Wait(ctx context.Context) (domain.TokenID, error) {
	select {
	case <-c.done:
		return c.token, c.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (c *Creation) resolve(id domain.TokenID, err error) {
	c.token = id
	c.err = err
	close(c.done)
}

// completion is an asset load result waiting to be applied on the board's thread.
type completion struct {
	creation *Creation
	asset    domain.Asset
	err      error
}

// inbox carries completions from loader goroutines to the board's thread.
type inbox struct {
	mu     sync.Mutex
	items  []completion
	signal chan struct{}
}

func newInbox() *inbox {
	return &inbox{signal: make(chan struct{}, 1)}
}

func (b *inbox) post(c completion) {
	b.mu.Lock()
	b.items = append(b.items, c)
	b.mu.Unlock()
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *inbox) drain() []completion {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	return items
}

// fetcher loads assets in the background, sharing one in-flight load per label.
type fetcher struct {
	loader ports.AssetLoader
	group  singleflight.Group
}

// fetch starts (or joins) the load of label and calls deliver with the result.
// Loads are not cancelled when ctx ends.
func (f *fetcher) fetch(ctx context.Context, label string, deliver func(domain.Asset, error)) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		v, err, _ := f.group.Do(label, func() (any, error) {
			return f.loader.Load(ctx, label)
		})
		asset, _ := v.(domain.Asset)
		deliver(asset, err)
	}()
}

// placeholderLoader returns an empty asset for every label.
type placeholderLoader struct{}

func (placeholderLoader) Load(_ context.Context, label string) (domain.Asset, error) {
	return domain.Asset{Label: label}, nil
}
