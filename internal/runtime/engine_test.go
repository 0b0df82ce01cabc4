package runtime_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/boardwalk/internal/runtime"
	"github.com/aretw0/boardwalk/pkg/adapters/memory"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	base := []runtime.EngineOption{runtime.WithAssetLoader(memory.NewLoader(memory.ChessGlyphs))}
	e, err := runtime.NewEngine(domain.DefaultGeometry(), append(base, opts...)...)
	require.NoError(t, err)
	return e
}

// settle applies asset loads and ticks until the board is idle.
func settle(t *testing.T, e *runtime.Engine) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.AwaitLoads(ctx))

	ticks := 0
	for !e.Idle() {
		require.NoError(t, e.Tick(ctx, frameMs))
		ticks++
		require.Less(t, ticks, 10000, "board did not settle")
	}
	return ticks
}

func TestEngine_ResolveFromEmpty(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	res, err := e.ResolvePosition(ctx, "start")
	require.NoError(t, err)
	assert.Len(t, res.Plan.Creates, 32)
	assert.Len(t, res.Creations, 32)
	assert.Equal(t, 32, e.PendingCreations())

	settle(t, e)

	n, err := e.Notation()
	require.NoError(t, err)
	assert.Equal(t, notation.StartPosition, n)

	g := e.Geometry()
	for _, tok := range e.Tokens() {
		assert.True(t, tok.Placed)
		assert.False(t, tok.Moving)
		assert.Equal(t, g.Center(tok.Cell), tok.Position)
		assert.Equal(t, memory.ChessGlyphs[tok.Label], string(tok.Asset.Data))
	}
	for _, c := range res.Creations {
		id, err := c.Result()
		require.NoError(t, err)
		assert.NotZero(t, id)
	}
}

func TestEngine_Stability(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	_, err := e.ResolvePosition(ctx, "start")
	require.NoError(t, err)
	settle(t, e)
	before := e.Tokens()

	res, err := e.ResolvePosition(ctx, notation.StartPosition)
	require.NoError(t, err)
	assert.True(t, res.Plan.IsNoop())
	assert.Empty(t, res.Creations)
	assert.Empty(t, e.Movements())
	assert.Equal(t, before, e.Tokens())
}

func TestEngine_Minimality(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	_, err := e.ResolvePosition(ctx, "start")
	require.NoError(t, err)
	settle(t, e)

	res, err := e.ResolvePosition(ctx, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR")
	require.NoError(t, err)
	require.Len(t, res.Plan.Moves, 1)
	assert.Empty(t, res.Plan.Creates)
	assert.Empty(t, res.Plan.Discards)
	mv := res.Plan.Moves[0]
	assert.Equal(t, "P", mv.Label)
	assert.Equal(t, "E2", e.Geometry().Label(mv.From))
	assert.Equal(t, "E4", e.Geometry().Label(mv.To))

	tok, ok, err := e.QueryTokenAt("E4")
	require.NoError(t, err)
	require.True(t, ok, "logical cell switches as soon as the movement is queued")
	assert.Equal(t, mv.Token, tok.ID)

	settle(t, e)
	n, _ := e.Notation()
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR", n)
}

func TestEngine_Convergence(t *testing.T) {
	ctx := context.Background()
	animated := newEngine(t)
	_, err := animated.ResolvePosition(ctx, "8/8/8/8/8/8/8/K7")
	require.NoError(t, err)
	settle(t, animated)
	k, ok, err := animated.QueryTokenAt("A1")
	require.NoError(t, err)
	require.True(t, ok)

	moved, err := animated.Move(ctx, "A1", "H8")
	require.NoError(t, err)
	require.True(t, moved)

	g := animated.Geometry()
	want := runtime.ConvergenceTicks(g.Center(domain.Cell{File: 0, Rank: 0}), g.Center(domain.Cell{File: 7, Rank: 7}))
	require.Greater(t, want, 1)

	for i := 1; i < want; i++ {
		require.NoError(t, animated.Tick(ctx, frameMs))
	}
	tok, _ := animated.Token(k.ID)
	assert.True(t, tok.Moving, "one tick short of convergence")
	assert.Equal(t, domain.Cell{File: 0, Rank: 0}, tok.Cell)

	require.NoError(t, animated.Tick(ctx, frameMs))
	tok, _ = animated.Token(k.ID)
	assert.False(t, tok.Moving)
	assert.Equal(t, domain.Cell{File: 7, Rank: 7}, tok.Cell)
	assert.Equal(t, g.Center(tok.Cell), tok.Position)
}

func TestEngine_MoveMissingPieceIsNoop(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	_, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/1p6")
	require.NoError(t, err)
	settle(t, e)

	moved, err := e.MovePiece(ctx, "p", "A1", "A2")
	require.NoError(t, err)
	assert.False(t, moved)

	_, ok, err := e.QueryTokenAt("A2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, e.Idle())
}

func TestEngine_MoveValidation(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	_, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/[K Q]7")
	require.NoError(t, err)
	settle(t, e)

	_, err = e.Move(ctx, "A1", "Z9")
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)

	// All-or-nothing: the second entry is invalid, so the first is not applied.
	n, err := e.MoveBatch(ctx, []runtime.MoveRequest{
		{From: "A1", To: "B1"},
		{From: "A1", To: "??"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)
	assert.Zero(t, n)
	assert.Empty(t, e.Movements())

	// Both tokens leave the multi-token cell.
	n, err = e.MoveBatch(ctx, []runtime.MoveRequest{
		{Label: "K", From: "A1", To: "B1"},
		{Label: "Q", From: "A1", To: "C1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	settle(t, e)

	notationText, _ := e.Notation()
	assert.Equal(t, "8/8/8/8/8/8/8/1KQ5", notationText)

	q, ok, _ := e.QueryTokenAt("C1")
	require.True(t, ok)
	assert.ErrorIs(t, e.MoveToken(ctx, q.ID+100, "A1"), domain.ErrTokenNotFound)
	require.NoError(t, e.MoveToken(ctx, q.ID, "B1"))
	settle(t, e)

	tokens, err := e.TokensAt("B1")
	require.NoError(t, err)
	assert.Len(t, tokens, 2, "moving onto an occupied cell co-locates tokens")
}

func TestEngine_LastDestinationWins(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	_, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/R7")
	require.NoError(t, err)
	settle(t, e)

	_, err = e.Move(ctx, "A1", "A8")
	require.NoError(t, err)
	require.NoError(t, e.Tick(ctx, frameMs))
	_, err = e.Move(ctx, "A8", "H1")
	require.NoError(t, err)

	require.Len(t, e.Movements(), 1)
	assert.Equal(t, domain.Cell{File: 7, Rank: 0}, e.Movements()[0].To)

	settle(t, e)
	n, _ := e.Notation()
	assert.Equal(t, "8/8/8/8/8/8/8/7R", n)
}

func TestEngine_DiscardIsImmediate(t *testing.T) {
	ctx := context.Background()
	var discarded []string
	e := newEngine(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnTokenDiscarded: func(_ context.Context, ev *domain.TokenEvent) {
			discarded = append(discarded, ev.Label)
		},
	}))
	_, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/Rr6")
	require.NoError(t, err)
	settle(t, e)

	res, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/R7")
	require.NoError(t, err)
	assert.Len(t, res.Plan.Discards, 1)
	assert.Equal(t, []string{"r"}, discarded)
	assert.Len(t, e.Tokens(), 1)
	assert.True(t, e.Idle())
}

func TestEngine_AnimationDisabledSnaps(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.WithAnimation(false))

	_, err := e.ResolvePosition(ctx, "start")
	require.NoError(t, err)
	require.NoError(t, e.AwaitLoads(ctx))

	assert.True(t, e.Idle(), "no tick needed without animation")
	for _, tok := range e.Tokens() {
		assert.True(t, tok.Placed)
		assert.Equal(t, e.Geometry().Center(tok.Cell), tok.Position)
	}
}

func TestEngine_NewTokensStartAtCenter(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	_, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/K7")
	require.NoError(t, err)
	require.NoError(t, e.AwaitLoads(ctx))

	tokens := e.Tokens()
	require.Len(t, tokens, 1)
	assert.Equal(t, e.Geometry().BoardCenter(), tokens[0].Position)
	assert.False(t, tokens[0].Placed, "unassigned until the first movement completes")
	assert.True(t, tokens[0].Moving)

	start := domain.Point{X: -10, Y: -10}
	e2 := newEngine(t, runtime.WithStartPoint(start))
	_, err = e2.ResolvePosition(ctx, "8/8/8/8/8/8/8/K7")
	require.NoError(t, err)
	require.NoError(t, e2.AwaitLoads(ctx))
	assert.Equal(t, start, e2.Tokens()[0].Position)
}

type failingLoader struct{ fail string }

func (l failingLoader) Load(_ context.Context, label string) (domain.Asset, error) {
	if label == l.fail {
		return domain.Asset{}, errors.New("image decode failed")
	}
	return domain.Asset{Label: label}, nil
}

func TestEngine_AssetLoadFailure(t *testing.T) {
	ctx := context.Background()
	var failed []*domain.AssetEvent
	e := newEngine(t,
		runtime.WithAssetLoader(failingLoader{fail: "x"}),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnAssetLoadFailed: func(_ context.Context, ev *domain.AssetEvent) { failed = append(failed, ev) },
		}),
	)

	res, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/xK6")
	require.NoError(t, err)
	require.NoError(t, e.Rotate(ctx, 90))
	settle(t, e)

	var xErr error
	for _, c := range res.Creations {
		_, err := c.Result()
		if c.Placement.Label == "x" {
			xErr = err
		} else {
			assert.NoError(t, err)
		}
	}
	assert.ErrorIs(t, xErr, domain.ErrAssetLoad)
	require.Len(t, failed, 1)
	assert.Equal(t, "x", failed[0].Label)

	n, _ := e.Notation()
	assert.Equal(t, "8/8/8/8/8/8/8/1K6", n, "destination stays empty, other work is undisturbed")
	assert.Equal(t, 90.0, e.Rotation().Angle)
}

type gatedLoader struct {
	gate  chan struct{}
	calls atomic.Int32
}

func (l *gatedLoader) Load(_ context.Context, label string) (domain.Asset, error) {
	l.calls.Add(1)
	<-l.gate
	return domain.Asset{Label: label}, nil
}

func TestEngine_SupersededCreation(t *testing.T) {
	ctx := context.Background()
	loader := &gatedLoader{gate: make(chan struct{})}
	e := newEngine(t, runtime.WithAssetLoader(loader))

	first, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/Q7")
	require.NoError(t, err)
	second, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/7Q")
	require.NoError(t, err)

	_, err = first.Creations[0].Result()
	assert.ErrorIs(t, err, domain.ErrSuperseded)

	close(loader.gate)
	settle(t, e)

	id, err := second.Creations[0].Result()
	require.NoError(t, err)
	tok, ok := e.Token(id)
	require.True(t, ok)
	assert.Equal(t, domain.Cell{File: 7, Rank: 0}, tok.Cell)
	assert.Len(t, e.Tokens(), 1)
}

func TestEngine_CoalescesLoads(t *testing.T) {
	ctx := context.Background()
	loader := &gatedLoader{gate: make(chan struct{})}
	e := newEngine(t, runtime.WithAssetLoader(loader))

	res, err := e.ResolvePosition(ctx, "8/pppppppp/8/8/8/8/8/8")
	require.NoError(t, err)
	require.Len(t, res.Creations, 8)

	require.Eventually(t, func() bool { return loader.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(loader.gate)
	settle(t, e)

	assert.Equal(t, int32(1), loader.calls.Load(), "one load per label while unresolved")
	assert.Len(t, e.Tokens(), 8)
}

func TestEngine_CreationWaitFromAnotherGoroutine(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, runtime.WithAnimation(false))

	res, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/k7")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var got domain.TokenID
	wg.Add(1)
	go func() {
		defer wg.Done()
		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		got, _ = res.Creations[0].Wait(waitCtx)
	}()

	require.NoError(t, e.AwaitLoads(ctx))
	wg.Wait()
	assert.NotZero(t, got)
}

func TestEngine_RotationClosureAndHooks(t *testing.T) {
	ctx := context.Background()
	var phases []domain.Phase
	e := newEngine(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnRotationPhase: func(_ context.Context, ev *domain.RotationEvent) { phases = append(phases, ev.To) },
	}))

	require.NoError(t, e.Rotate(ctx, 90))
	require.NoError(t, e.Rotate(ctx, 360))
	err := e.SetRotation(ctx, 45)
	assert.ErrorIs(t, err, domain.ErrRotationInFlight)
	assert.NotErrorIs(t, err, domain.ErrInvalidConfiguration)

	settle(t, e)
	rot := e.Rotation()
	assert.Equal(t, 90.0, rot.Angle)
	assert.Equal(t, 1.0, rot.Scale)
	assert.Equal(t, []domain.Phase{
		domain.PhaseSqueezing, domain.PhaseTurning, domain.PhaseEnlarging, domain.PhaseIdle,
		domain.PhaseSqueezing, domain.PhaseTurning, domain.PhaseEnlarging, domain.PhaseIdle,
	}, phases)

	require.NoError(t, e.SetRotation(ctx, 180))
	assert.Equal(t, 180.0, e.Rotation().Angle)
	assert.Equal(t, 180.0, e.Scene().CounterRotation)
}

func TestEngine_Scale(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	for _, bad := range []float64{0, -1, 9} {
		assert.ErrorIs(t, e.Scale(ctx, bad), domain.ErrInvalidConfiguration, "factor %v", bad)
	}
	require.NoError(t, e.Scale(ctx, 2))
	assert.Equal(t, 2.0, e.Scene().StageScale)

	require.NoError(t, e.Rotate(ctx, 90))
	for e.Rotation().Phase != domain.PhaseTurning {
		require.NoError(t, e.Tick(ctx, frameMs))
	}
	assert.InDelta(t, 2*domain.DefaultSqueezeFactor, e.Scene().StageScale, 1e-9)
}

func TestEngine_RendererReceivesDiffs(t *testing.T) {
	ctx := context.Background()
	rec := memory.NewRecorder()
	e := newEngine(t, runtime.WithRenderer(rec), runtime.WithID("board-1"))

	_, err := e.ResolvePosition(ctx, "8/8/8/8/8/8/8/K7")
	require.NoError(t, err)
	first := rec.Last()
	require.NotNil(t, first)
	assert.Equal(t, "board-1", first.BoardID)
	assert.NotNil(t, first.StageScale, "first diff carries the full transform")

	require.NoError(t, e.AwaitLoads(ctx))
	added := rec.Last()
	require.Len(t, added.Added, 1)
	assert.Equal(t, "K", added.Added[0].Label)

	require.NoError(t, e.Tick(ctx, frameMs))
	moved := rec.Last()
	require.Len(t, moved.Moved, 1)
	assert.Equal(t, added.Added[0].ID, moved.Moved[0].ID)

	assert.False(t, moved.Moved[0].Placed)

	count := len(rec.Diffs())
	settle(t, e)
	diffs := rec.Diffs()
	final := diffs[len(diffs)-1]
	require.Len(t, final.Moved, 1)
	assert.True(t, final.Moved[0].Placed, "the completing frame carries the new cell")
	assert.Equal(t, domain.Cell{File: 0, Rank: 0}, final.Moved[0].Cell)
	require.NoError(t, e.Tick(ctx, frameMs))
	assert.Greater(t, len(rec.Diffs()), count)
	last := len(rec.Diffs())
	require.NoError(t, e.Tick(ctx, frameMs))
	assert.Equal(t, last, len(rec.Diffs()), "idle ticks emit nothing")
}

func TestEngine_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := runtime.NewEngine(domain.Geometry{Files: 0, Ranks: 8, BlockSize: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = runtime.NewEngine(domain.DefaultGeometry(), runtime.WithHints(domain.Hints{"B": "sideways"}))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = runtime.NewEngine(domain.DefaultGeometry(), runtime.WithRotationConfig(domain.RotationConfig{Squeeze: 1}))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	e := newEngine(t)
	assert.ErrorIs(t, e.Tick(ctx, -1), domain.ErrInvalidConfiguration)

	_, err = e.ResolvePosition(ctx, "8/8")
	assert.ErrorIs(t, err, domain.ErrInvalidNotation)
	_, err = e.ResolveMatrix(ctx, domain.NewMatrix(3, 3))
	assert.ErrorIs(t, err, domain.ErrInvalidNotation)

	_, _, err = e.QueryTokenAt("A0")
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)

	assert.ErrorIs(t, e.SetRotation(ctx, 45.5), domain.ErrInvalidConfiguration)
	assert.Equal(t, 0.0, e.Rotation().Angle)
}

func TestEngine_RejectsUnencodableLabels(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	_, err := e.ResolvePosition(ctx, "start")
	require.NoError(t, err)
	settle(t, e)

	for _, label := range []string{"", "a b", "[", "]", "a/b", "x\tY"} {
		t.Run(label, func(t *testing.T) {
			m := domain.NewMatrix(8, 8)
			m.Add(domain.Cell{File: 0, Rank: 0}, "R")
			m[1][7] = domain.Square{label}

			_, err := e.ResolveMatrix(ctx, m)
			var nerr *domain.NotationError
			require.ErrorAs(t, err, &nerr)
			assert.Equal(t, 1, nerr.Row)

			n, err := e.Notation()
			require.NoError(t, err)
			assert.Equal(t, notation.StartPosition, n)
			assert.Zero(t, e.PendingCreations())
		})
	}
}

func TestEngine_PixelToLabel(t *testing.T) {
	e := newEngine(t)
	label, ok := e.PixelToLabel(domain.Point{X: 450, Y: 30})
	assert.True(t, ok)
	assert.Equal(t, "H8", label)

	_, ok = e.PixelToLabel(domain.Point{X: -1, Y: 30})
	assert.False(t, ok)
}
