package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/loam"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/internal/config"
	"github.com/aretw0/boardwalk/pkg/adapters/file"
	loamAdapter "github.com/aretw0/boardwalk/pkg/adapters/loam"
	"github.com/aretw0/boardwalk/pkg/adapters/memory"
	"github.com/aretw0/boardwalk/pkg/adapters/redis"
	"github.com/aretw0/boardwalk/pkg/observability"
	"github.com/aretw0/boardwalk/pkg/ports"
)

// newAssetLoader selects the asset loader named by the configuration.
func newAssetLoader(cfg config.AssetsConfig) (ports.AssetLoader, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewLoader(memory.ChessGlyphs), nil
	case config.DriverFile:
		var opts []file.Option
		if cfg.Pattern != "" {
			opts = append(opts, file.WithPattern(cfg.Pattern))
		}
		return file.NewLoader(cfg.Dir, opts...), nil
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.RedisPrefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.RedisPrefix))
		}
		return redis.New(cfg.RedisAddr, "", 0, opts...), nil
	default:
		return nil, fmt.Errorf("unknown asset driver %q", cfg.Driver)
	}
}

// openBook returns the position book under dir, or an empty in-memory book when dir is unset.
// The Loam repository is opened read-only unless writable is set.
func openBook(dir string, writable bool) (ports.PositionBook, error) {
	if dir == "" {
		return memory.NewBook(nil), nil
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	opts := []loam.Option{loam.WithStrict(true)}
	if writable {
		opts = append(opts, loam.WithVersioning(false))
	} else {
		opts = append(opts, loam.WithReadOnly(true))
	}
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return loamAdapter.New(repo), nil
}

// boardOptions returns the configured Board options plus the asset loader and logging.
func (a *app) boardOptions() ([]boardwalk.Option, error) {
	loader, err := newAssetLoader(a.cfg.Assets)
	if err != nil {
		return nil, err
	}
	opts := a.cfg.BoardOptions()
	return append(opts,
		boardwalk.WithAssetLoader(loader),
		boardwalk.WithLogger(a.logger),
		boardwalk.WithLifecycleHooks(observability.LoggingHooks(a.logger)),
	), nil
}

func (a *app) newBoard(extra ...boardwalk.Option) (*boardwalk.Board, error) {
	opts, err := a.boardOptions()
	if err != nil {
		return nil, err
	}
	return boardwalk.New(append(opts, extra...)...)
}

// frameMs is the fixed step used by the offline commands.
const frameMs = 16

// settle drives b with fixed frames until it is idle and returns the number of frames.
func settle(ctx context.Context, b *boardwalk.Board, maxFrames int) (int, error) {
	if err := b.AwaitLoads(ctx); err != nil {
		return 0, err
	}
	frames := 0
	for !b.Idle() {
		if frames == maxFrames {
			return frames, fmt.Errorf("board did not settle after %d frames", maxFrames)
		}
		if err := b.Tick(ctx, frameMs); err != nil {
			return frames, err
		}
		frames++
	}
	return frames, nil
}
