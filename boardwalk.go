package boardwalk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/boardwalk/internal/logging"
	"github.com/aretw0/boardwalk/internal/runtime"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/notation"
	"github.com/aretw0/boardwalk/pkg/ports"
)

// Version is the module version reported by the CLI and the HTTP API.
var Version = "0.1.0-dev"

type (
	// Resolution is the outcome of a position change.
	Resolution = runtime.Resolution
	// Plan is the assignment computed for a position change.
	Plan = runtime.Plan
	// Assignment binds an existing token to a destination cell.
	Assignment = runtime.Assignment
	// Creation is the single-resolution handle of a token waiting for its asset.
	Creation = runtime.Creation
	// MoveRequest is one entry of a batch move.
	MoveRequest = runtime.MoveRequest
)

// Board is the high-level entry point for the boardwalk library.
// It wraps the internal runtime and provides a simplified API for consumers.
//
// A Board is not safe for concurrent use; see pkg/session for a goroutine-safe host.
type Board struct {
	runtime  *runtime.Engine
	geometry domain.Geometry
	rotation domain.RotationConfig
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	opts     []runtime.EngineOption
	ID       string
}

// Option defines a functional option for configuring the Board.
type Option func(*Board)

// WithGeometry sets the board shape (default: 8x8, 60px squares).
func WithGeometry(g domain.Geometry) Option {
	return func(b *Board) {
		b.geometry = g
	}
}

// WithID sets the board identifier (default: a random UUID).
func WithID(id string) Option {
	return func(b *Board) {
		b.ID = id
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Board) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the board.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithRenderer injects the collaborator that receives frame diffs.
func WithRenderer(r ports.Renderer) Option {
	return func(b *Board) {
		b.opts = append(b.opts, runtime.WithRenderer(r))
	}
}

// WithAssetLoader injects the collaborator that resolves labels to assets.
// Without one, every label resolves to an empty asset.
func WithAssetLoader(l ports.AssetLoader) Option {
	return func(b *Board) {
		b.opts = append(b.opts, runtime.WithAssetLoader(l))
	}
}

// WithHints sets per-label relocation tie-break rules (see domain.ChessHints).
func WithHints(h domain.Hints) Option {
	return func(b *Board) {
		b.opts = append(b.opts, runtime.WithHints(h))
	}
}

// WithAnimation toggles interpolation (default: enabled).
func WithAnimation(enabled bool) Option {
	return func(b *Board) {
		b.opts = append(b.opts, runtime.WithAnimation(enabled))
	}
}

// WithRotationDuration sets the duration of one squeeze-turn-enlarge cycle.
func WithRotationDuration(d time.Duration) Option {
	return func(b *Board) {
		b.rotation.Duration = d
	}
}

// WithSqueezeFactor sets the scale reached at the end of the squeeze phase (0 < f < 1).
func WithSqueezeFactor(f float64) Option {
	return func(b *Board) {
		b.rotation.Squeeze = f
	}
}

// WithStartPoint sets the pixel where new tokens appear (default: board centre).
func WithStartPoint(p domain.Point) Option {
	return func(b *Board) {
		b.opts = append(b.opts, runtime.WithStartPoint(p))
	}
}

// New initializes an empty Board.
func New(opts ...Option) (*Board, error) {
	b := &Board{
		geometry: domain.DefaultGeometry(),
		rotation: domain.DefaultRotationConfig(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	// Ensure logger is initialized (so we don't pass nil to runtime)
	if b.logger == nil {
		b.logger = logging.NewNop()
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithID(b.ID),
		runtime.WithLifecycleHooks(b.hooks),
		runtime.WithLogger(b.logger),
		runtime.WithRotationConfig(b.rotation),
	}
	runtimeOpts = append(runtimeOpts, b.opts...)

	eng, err := runtime.NewEngine(b.geometry, runtimeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	b.runtime = eng
	return b, nil
}

// Geometry returns the board shape.
func (b *Board) Geometry() domain.Geometry {
	return b.geometry
}

// Codec returns the notation codec for this board's shape.
func (b *Board) Codec() *notation.Codec {
	return b.runtime.Codec()
}

// Decode parses notation text for this board's shape.
func (b *Board) Decode(text string) (domain.Matrix, error) {
	return b.runtime.Codec().Decode(text)
}

// Encode writes a matrix as notation text for this board's shape.
func (b *Board) Encode(m domain.Matrix) (string, error) {
	return b.runtime.Codec().Encode(m)
}

// ResolvePosition transitions the board to a position given as notation or preset name.
func (b *Board) ResolvePosition(ctx context.Context, input string) (*Resolution, error) {
	return b.runtime.ResolvePosition(ctx, input)
}

// ResolveMatrix transitions the board to a position given as a matrix.
func (b *Board) ResolveMatrix(ctx context.Context, m domain.Matrix) (*Resolution, error) {
	return b.runtime.ResolveMatrix(ctx, m)
}

// LoadPosition resolves a named position from a position book.
func (b *Board) LoadPosition(ctx context.Context, book ports.PositionBook, name string) (*Resolution, error) {
	pos, err := book.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load position %q: %w", name, err)
	}
	return b.runtime.ResolvePosition(ctx, pos.Notation)
}

// Move relocates the first token at from to to. It reports false when from is empty.
func (b *Board) Move(ctx context.Context, from, to string) (bool, error) {
	return b.runtime.Move(ctx, from, to)
}

// MovePiece relocates the first token with the given label at from to to.
func (b *Board) MovePiece(ctx context.Context, label, from, to string) (bool, error) {
	return b.runtime.MovePiece(ctx, label, from, to)
}

// MoveToken relocates a token by reference.
func (b *Board) MoveToken(ctx context.Context, id domain.TokenID, to string) error {
	return b.runtime.MoveToken(ctx, id, to)
}

// MoveBatch applies several moves with all-or-nothing validation.
func (b *Board) MoveBatch(ctx context.Context, moves []MoveRequest) (int, error) {
	return b.runtime.MoveBatch(ctx, moves)
}

// QueryTokenAt returns the first token on a cell.
func (b *Board) QueryTokenAt(label string) (domain.Token, bool, error) {
	return b.runtime.QueryTokenAt(label)
}

// TokensAt returns every token on a cell.
func (b *Board) TokensAt(label string) ([]domain.Token, error) {
	return b.runtime.TokensAt(label)
}

// Token returns a token by ID.
func (b *Board) Token(id domain.TokenID) (domain.Token, bool) {
	return b.runtime.Token(id)
}

// Tokens returns every token in scan order.
func (b *Board) Tokens() []domain.Token {
	return b.runtime.Tokens()
}

// Snapshot returns the board matrix derived from live tokens.
func (b *Board) Snapshot() domain.Matrix {
	return b.runtime.Snapshot()
}

// Notation encodes the current snapshot.
func (b *Board) Notation() (string, error) {
	return b.runtime.Notation()
}

// Movements returns the in-flight movements.
func (b *Board) Movements() []domain.Movement {
	return b.runtime.Movements()
}

// Tick advances animations by deltaMs milliseconds.
func (b *Board) Tick(ctx context.Context, deltaMs float64) error {
	return b.runtime.Tick(ctx, deltaMs)
}

// Poll applies finished asset loads without advancing time.
func (b *Board) Poll(ctx context.Context) int {
	return b.runtime.Poll(ctx)
}

// AwaitLoads blocks until every pending creation is resolved.
func (b *Board) AwaitLoads(ctx context.Context) error {
	return b.runtime.AwaitLoads(ctx)
}

// Rotate requests a squeeze-turn-enlarge cycle of delta degrees.
func (b *Board) Rotate(ctx context.Context, delta int) error {
	return b.runtime.Rotate(ctx, delta)
}

// SetRotation jumps to an absolute angle in whole degrees. It fails with
// domain.ErrRotationInFlight while a rotation is running or queued.
func (b *Board) SetRotation(ctx context.Context, degrees float64) error {
	return b.runtime.SetRotation(ctx, degrees)
}

// Scale sets the base stage scale.
func (b *Board) Scale(ctx context.Context, factor float64) error {
	return b.runtime.Scale(ctx, factor)
}

// Rotation returns the rotation state value.
func (b *Board) Rotation() domain.RotationState {
	return b.runtime.Rotation()
}

// Scene returns the renderer-facing snapshot.
func (b *Board) Scene() domain.Scene {
	return b.runtime.Scene()
}

// Idle reports whether nothing is moving, rotating or loading.
func (b *Board) Idle() bool {
	return b.runtime.Idle()
}

// PendingCreations returns the number of creations waiting for their asset.
func (b *Board) PendingCreations() int {
	return b.runtime.PendingCreations()
}

// PixelToLabel returns the position label under a pixel.
func (b *Board) PixelToLabel(pt domain.Point) (string, bool) {
	return b.runtime.PixelToLabel(pt)
}

// LabelToPixel returns the pixel centre of a position label.
func (b *Board) LabelToPixel(label string) (domain.Point, error) {
	c, err := b.geometry.ParseLabel(label)
	if err != nil {
		return domain.Point{}, err
	}
	return b.geometry.Center(c), nil
}
