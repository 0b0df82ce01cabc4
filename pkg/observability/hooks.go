package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/boardwalk/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that log every board event.
// Token and movement events are logged at debug level, asset failures at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	token := func(msg string) func(context.Context, *domain.TokenEvent) {
		return func(ctx context.Context, e *domain.TokenEvent) {
			logger.DebugContext(ctx, msg,
				"board_id", e.BoardID,
				"token_id", e.TokenID.String(),
				"label", e.Label,
				"file", e.Cell.File,
				"rank", e.Cell.Rank,
			)
		}
	}
	return domain.LifecycleHooks{
		OnTokenCreated:      token("token_created"),
		OnTokenDiscarded:    token("token_discarded"),
		OnMovementQueued:    token("movement_queued"),
		OnMovementCompleted: token("movement_completed"),
		OnRotationPhase: func(ctx context.Context, e *domain.RotationEvent) {
			logger.DebugContext(ctx, "rotation_phase",
				"board_id", e.BoardID,
				"from", e.From,
				"to", e.To,
				"angle", e.Angle,
				"delta", e.Delta,
			)
		},
		OnAssetLoadFailed: func(ctx context.Context, e *domain.AssetEvent) {
			logger.WarnContext(ctx, "asset_load_failed",
				"board_id", e.BoardID,
				"label", e.Label,
				"err", e.Err,
			)
		},
	}
}

// ChainHooks combines several hook sets; each event is delivered to every set in order.
func ChainHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnTokenCreated = chain(out.OnTokenCreated, h.OnTokenCreated)
		out.OnTokenDiscarded = chain(out.OnTokenDiscarded, h.OnTokenDiscarded)
		out.OnMovementQueued = chain(out.OnMovementQueued, h.OnMovementQueued)
		out.OnMovementCompleted = chain(out.OnMovementCompleted, h.OnMovementCompleted)
		out.OnRotationPhase = chain(out.OnRotationPhase, h.OnRotationPhase)
		out.OnAssetLoadFailed = chain(out.OnAssetLoadFailed, h.OnAssetLoadFailed)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
