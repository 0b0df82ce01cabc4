package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/aretw0/boardwalk/internal/logging"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/notation"
	"github.com/aretw0/boardwalk/pkg/ports"
)

// MaxScale bounds the stage scale factor accepted by Scale.
const MaxScale = 8.0

// Engine is the board core: it owns the token map, the movement queue and the rotation
// state, and advances them on Tick.
//
// Engine is not safe for concurrent use. Every method must be called from one logical
// thread; asset loads run in the background and their results are applied on the next
// Tick, Poll or AwaitLoads. Hosts with several goroutines serialize calls through
// pkg/session.
type Engine struct {
	id       string
	geometry domain.Geometry
	codec    *notation.Codec
	hints    domain.Hints
	animate  bool
	rotCfg   domain.RotationConfig
	start    *domain.Point

	tokens    map[domain.TokenID]*domain.Token
	nextID    domain.TokenID
	queue     Queue
	rotation  domain.RotationState
	baseScale float64

	fetcher    *fetcher
	inbox      *inbox
	generation uint64
	pending    []*Creation

	renderer  ports.Renderer
	lastScene *domain.Scene
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithID sets the board identifier reported in scenes, events and logs.
func WithID(id string) EngineOption {
	return func(e *Engine) {
		e.id = id
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRenderer sets the collaborator that receives frame diffs.
func WithRenderer(r ports.Renderer) EngineOption {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithAssetLoader sets the collaborator that resolves labels to assets.
func WithAssetLoader(l ports.AssetLoader) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.fetcher.loader = l
		}
	}
}

// WithHints sets the per-label relocation tie-break rules.
func WithHints(h domain.Hints) EngineOption {
	return func(e *Engine) {
		e.hints = h
	}
}

// WithAnimation toggles interpolation. When disabled, movements and new tokens snap to
// their destination immediately.
func WithAnimation(enabled bool) EngineOption {
	return func(e *Engine) {
		e.animate = enabled
	}
}

// WithRotationConfig sets the rotation cycle duration and squeeze factor.
func WithRotationConfig(cfg domain.RotationConfig) EngineOption {
	return func(e *Engine) {
		e.rotCfg = cfg
	}
}

// WithStartPoint sets the pixel where new tokens appear (default: board centre).
func WithStartPoint(p domain.Point) EngineOption {
	return func(e *Engine) {
		e.start = &p
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an empty board with the given geometry.
func NewEngine(g domain.Geometry, opts ...EngineOption) (*Engine, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	codec, err := notation.NewCodec(g.Files, g.Ranks)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		id:        "board",
		geometry:  g,
		codec:     codec,
		animate:   true,
		rotCfg:    domain.DefaultRotationConfig(),
		tokens:    make(map[domain.TokenID]*domain.Token),
		nextID:    1,
		rotation:  domain.NewRotationState(),
		baseScale: 1,
		fetcher:   &fetcher{loader: placeholderLoader{}},
		inbox:     newInbox(),
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.hints.Validate(); err != nil {
		return nil, err
	}
	if err := e.rotCfg.Validate(); err != nil {
		return nil, err
	}
	e.logger = e.logger.With("board_id", e.id)
	return e, nil
}

// ID returns the board identifier.
func (e *Engine) ID() string {
	return e.id
}

// Geometry returns the board shape.
func (e *Engine) Geometry() domain.Geometry {
	return e.geometry
}

// Codec returns the notation codec for this board's shape.
func (e *Engine) Codec() *notation.Codec {
	return e.codec
}

// Resolution is the outcome of a position change.
type Resolution struct {
	Plan Plan
	// Creations holds one handle per entry of Plan.Creates, in the same order.
	Creations []*Creation
}

// ResolvePosition transitions the board to a position given as notation or preset name.
func (e *Engine) ResolvePosition(ctx context.Context, input string) (*Resolution, error) {
	m, err := e.codec.Parse(input)
	if err != nil {
		return nil, err
	}
	return e.ResolveMatrix(ctx, m)
}

// ResolveMatrix transitions the board to the target matrix: existing tokens are reused
// where possible, missing ones are requested from the asset loader and unneeded ones are
// discarded. Creations still pending from an earlier resolution are superseded.
func (e *Engine) ResolveMatrix(ctx context.Context, target domain.Matrix) (*Resolution, error) {
	files, ranks := target.Dimensions()
	if !target.Rectangular() || files != e.geometry.Files || ranks != e.geometry.Ranks {
		return nil, &domain.NotationError{
			Reason: fmt.Sprintf("matrix is not a %dx%d grid", e.geometry.Files, e.geometry.Ranks),
		}
	}
	for file, column := range target {
		for rank, sq := range column {
			for _, label := range sq {
				if err := notation.ValidLabel(label); err != nil {
					return nil, &domain.NotationError{
						Row:    ranks - rank,
						Reason: fmt.Sprintf("label %q at file %d: %v", label, file, err),
					}
				}
			}
		}
	}
	e.applyCompletions(ctx)

	e.generation++
	for _, c := range e.pending {
		c.resolve(0, domain.ErrSuperseded)
	}
	e.pending = nil

	plan := Resolve(e.Tokens(), target, e.hints)

	for _, id := range plan.Discards {
		e.discard(ctx, id)
	}
	for _, mv := range plan.Moves {
		e.queueMove(ctx, e.tokens[mv.Token], mv.To)
	}
	res := &Resolution{Plan: plan}
	for _, p := range plan.Creates {
		c := newCreation(p, e.generation, e.nextID)
		e.nextID++
		e.pending = append(e.pending, c)
		res.Creations = append(res.Creations, c)
		e.fetcher.fetch(ctx, p.Label, func(asset domain.Asset, err error) {
			e.inbox.post(completion{creation: c, asset: asset, err: err})
		})
	}

	e.logger.DebugContext(ctx, "position resolved",
		"stay", len(plan.Stay),
		"moves", len(plan.Moves),
		"creates", len(plan.Creates),
		"discards", len(plan.Discards),
	)
	e.emit(ctx)
	return res, nil
}

// MoveRequest is one entry of a batch move. An empty Label moves the first token at From.
type MoveRequest struct {
	Label string `json:"label,omitempty"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Move relocates the first token (in scan order) at from to to.
// It reports false, without error, when from is empty.
func (e *Engine) Move(ctx context.Context, from, to string) (bool, error) {
	return e.MovePiece(ctx, "", from, to)
}

// MovePiece relocates the first token with the given label at from to to.
// An empty label matches any token. It reports false when no such token exists.
func (e *Engine) MovePiece(ctx context.Context, label, from, to string) (bool, error) {
	n, err := e.MoveBatch(ctx, []MoveRequest{{Label: label, From: from, To: to}})
	return n == 1, err
}

// MoveToken relocates a token by reference.
func (e *Engine) MoveToken(ctx context.Context, id domain.TokenID, to string) error {
	dst, err := e.geometry.ParseLabel(to)
	if err != nil {
		return err
	}
	t, ok := e.tokens[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTokenNotFound, id)
	}
	e.queueMove(ctx, t, dst)
	e.emit(ctx)
	return nil
}

// MoveBatch validates every label first and then queues all movements, so either every
// request is applied or none is. Tokens are selected before any of them moves and each
// token is selected at most once. It returns the number of tokens moved.
func (e *Engine) MoveBatch(ctx context.Context, moves []MoveRequest) (int, error) {
	type resolved struct {
		from, to domain.Cell
		label    string
	}
	parsed := make([]resolved, 0, len(moves))
	for i, m := range moves {
		from, err := e.geometry.ParseLabel(m.From)
		if err != nil {
			return 0, fmt.Errorf("move %d: %w", i, err)
		}
		to, err := e.geometry.ParseLabel(m.To)
		if err != nil {
			return 0, fmt.Errorf("move %d: %w", i, err)
		}
		parsed = append(parsed, resolved{from: from, to: to, label: m.Label})
	}

	taken := make(map[domain.TokenID]bool)
	type selection struct {
		token *domain.Token
		to    domain.Cell
	}
	var selected []selection
	for _, p := range parsed {
		for _, t := range e.sorted() {
			if taken[t.ID] || (p.label != "" && t.Label != p.label) {
				continue
			}
			if cell, ok := t.Logical(); ok && cell == p.from {
				taken[t.ID] = true
				selected = append(selected, selection{token: t, to: p.to})
				break
			}
		}
	}

	for _, s := range selected {
		e.queueMove(ctx, s.token, s.to)
	}
	if len(selected) > 0 {
		e.emit(ctx)
	}
	return len(selected), nil
}

// QueryTokenAt returns the first token (in scan order) whose logical cell is label.
func (e *Engine) QueryTokenAt(label string) (domain.Token, bool, error) {
	tokens, err := e.TokensAt(label)
	if err != nil || len(tokens) == 0 {
		return domain.Token{}, false, err
	}
	return tokens[0], true, nil
}

// TokensAt returns every token whose logical cell is label, in scan order.
func (e *Engine) TokensAt(label string) ([]domain.Token, error) {
	c, err := e.geometry.ParseLabel(label)
	if err != nil {
		return nil, err
	}
	var out []domain.Token
	for _, t := range e.sorted() {
		if cell, ok := t.Logical(); ok && cell == c {
			out = append(out, *t)
		}
	}
	return out, nil
}

// Token returns a token by ID.
func (e *Engine) Token(id domain.TokenID) (domain.Token, bool) {
	t, ok := e.tokens[id]
	if !ok {
		return domain.Token{}, false
	}
	return *t, true
}

// Tokens returns a copy of every token in scan order.
func (e *Engine) Tokens() []domain.Token {
	sorted := e.sorted()
	out := make([]domain.Token, len(sorted))
	for i, t := range sorted {
		out[i] = *t
	}
	return out
}

// Snapshot derives the board matrix from the tokens' logical cells.
func (e *Engine) Snapshot() domain.Matrix {
	m := domain.NewMatrix(e.geometry.Files, e.geometry.Ranks)
	for _, t := range e.sorted() {
		if cell, ok := t.Logical(); ok {
			m.Add(cell, t.Label)
		}
	}
	return m
}

// Notation encodes the current snapshot.
func (e *Engine) Notation() (string, error) {
	return e.codec.Encode(e.Snapshot())
}

// Movements returns the queued movements in order.
func (e *Engine) Movements() []domain.Movement {
	return e.queue.Items()
}

// PendingCreations returns the number of creations waiting for their asset.
func (e *Engine) PendingCreations() int {
	return len(e.pending)
}

// Rotation returns the rotation state value.
func (e *Engine) Rotation() domain.RotationState {
	return e.rotation
}

// Idle reports whether nothing is moving, rotating or loading.
func (e *Engine) Idle() bool {
	return e.queue.Len() == 0 && e.rotation.Idle() && len(e.pending) == 0
}

// PixelToLabel returns the position label under a pixel, for hit-testing.
func (e *Engine) PixelToLabel(pt domain.Point) (string, bool) {
	c, ok := e.geometry.CellAt(pt)
	if !ok {
		return "", false
	}
	return e.geometry.Label(c), true
}

// Scene returns the renderer-facing snapshot of the board.
func (e *Engine) Scene() domain.Scene {
	return domain.Scene{
		BoardID:         e.id,
		Tokens:          e.Tokens(),
		StageRotation:   e.rotation.Angle,
		CounterRotation: e.rotation.Counter,
		StageScale:      e.baseScale * e.rotation.Scale,
	}
}

// Tick advances the board by deltaMs milliseconds: pending asset completions are
// applied, the rotation state machine steps once and every queued movement moves one
// interpolation step.
func (e *Engine) Tick(ctx context.Context, deltaMs float64) error {
	if deltaMs < 0 || math.IsNaN(deltaMs) || math.IsInf(deltaMs, 0) {
		return &domain.ConfigError{Field: "delta_ms", Reason: "must be a finite non-negative number", Value: deltaMs}
	}
	e.applyCompletions(ctx)

	var changes []PhaseChange
	e.rotation, changes = StepRotation(e.rotation, deltaMs, e.rotCfg)
	e.notifyPhases(ctx, changes)

	for _, m := range e.queue.Items() {
		t, ok := e.tokens[m.Token]
		if !ok {
			e.queue.Remove(m.Token)
			continue
		}
		var done bool
		t.Position, done = Approach(t.Position, e.geometry.Center(m.To))
		if done {
			e.complete(ctx, t, m.To)
		}
	}

	e.emit(ctx)
	return nil
}

// Poll applies asset completions that arrived since the last call without advancing
// time. It returns the number of completions applied.
func (e *Engine) Poll(ctx context.Context) int {
	n := e.applyCompletions(ctx)
	if n > 0 {
		e.emit(ctx)
	}
	return n
}

// AwaitLoads blocks until every pending creation is resolved, applying completions as
// they arrive.
func (e *Engine) AwaitLoads(ctx context.Context) error {
	for {
		e.Poll(ctx)
		if len(e.pending) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.inbox.signal:
		}
	}
}

// Rotate requests a squeeze-turn-enlarge cycle of delta degrees. Requests arriving while
// a cycle is in flight are queued. A zero delta does nothing.
func (e *Engine) Rotate(ctx context.Context, delta int) error {
	var changes []PhaseChange
	e.rotation, changes = RequestRotation(e.rotation, delta)
	e.notifyPhases(ctx, changes)
	return nil
}

// SetRotation jumps to an absolute stage angle, a whole number of degrees, without
// animation. It fails with ErrRotationInFlight while a rotation cycle is running or queued.
func (e *Engine) SetRotation(ctx context.Context, degrees float64) error {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) || degrees != math.Trunc(degrees) {
		return &domain.ConfigError{Field: "rotation", Reason: "must be a whole number of degrees", Value: degrees}
	}
	if !e.rotation.Idle() {
		return domain.ErrRotationInFlight
	}
	e.rotation = SetRotation(e.rotation, degrees)
	e.emit(ctx)
	return nil
}

// Scale sets the base stage scale. The effective scale is the base scale times the
// rotation phase scale.
func (e *Engine) Scale(ctx context.Context, factor float64) error {
	if !(factor > 0 && factor <= MaxScale) {
		return &domain.ConfigError{Field: "scale", Reason: fmt.Sprintf("must be in (0, %g]", MaxScale), Value: factor}
	}
	e.baseScale = factor
	e.emit(ctx)
	return nil
}

func (e *Engine) sorted() []*domain.Token {
	out := make([]*domain.Token, 0, len(e.tokens))
	for _, t := range e.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// queueMove sends a token toward dst, or snaps it there when animation is disabled.
func (e *Engine) queueMove(ctx context.Context, t *domain.Token, dst domain.Cell) {
	if t == nil {
		return
	}
	e.fireToken(ctx, e.hooks.OnMovementQueued, domain.EventMovementQueued, t, dst)
	if !e.animate {
		t.Position = e.geometry.Center(dst)
		e.queue.Remove(t.ID)
		e.complete(ctx, t, dst)
		return
	}
	t.Target = dst
	t.Moving = true
	e.queue.Upsert(domain.Movement{Token: t.ID, To: dst})
}

// complete records the exact destination once a movement converged.
func (e *Engine) complete(ctx context.Context, t *domain.Token, dst domain.Cell) {
	t.Cell = dst
	t.Placed = true
	t.Moving = false
	t.Target = domain.Cell{}
	e.queue.Remove(t.ID)
	e.fireToken(ctx, e.hooks.OnMovementCompleted, domain.EventMovementCompleted, t, dst)
}

func (e *Engine) discard(ctx context.Context, id domain.TokenID) {
	t, ok := e.tokens[id]
	if !ok {
		return
	}
	cell, _ := t.Logical()
	delete(e.tokens, id)
	e.queue.Remove(id)
	e.fireToken(ctx, e.hooks.OnTokenDiscarded, domain.EventTokenDiscarded, t, cell)
}

// applyCompletions turns delivered assets into tokens. Completions of superseded
// creations are dropped.
func (e *Engine) applyCompletions(ctx context.Context) int {
	items := e.inbox.drain()
	applied := 0
	for _, it := range items {
		c := it.creation
		if c.generation != e.generation || !e.removePending(c) {
			continue
		}
		applied++

		if it.err != nil {
			err := fmt.Errorf("%w: label %q: %w", domain.ErrAssetLoad, c.Placement.Label, it.err)
			e.logger.WarnContext(ctx, "asset load failed",
				"label", c.Placement.Label,
				"cell", e.geometry.Label(c.Placement.Cell),
				"err", it.err,
			)
			if e.hooks.OnAssetLoadFailed != nil {
				e.hooks.OnAssetLoadFailed(ctx, &domain.AssetEvent{
					EventBase: e.base(domain.EventAssetLoadFailed),
					Label:     c.Placement.Label,
					Cell:      c.Placement.Cell,
					Err:       err,
				})
			}
			c.resolve(0, err)
			continue
		}

		t := &domain.Token{
			ID:    c.reserved,
			Label: c.Placement.Label,
			Scale: 1,
			Asset: it.asset,
		}
		if e.animate {
			t.Position = e.geometry.BoardCenter()
			if e.start != nil {
				t.Position = *e.start
			}
		}
		e.tokens[t.ID] = t
		e.fireToken(ctx, e.hooks.OnTokenCreated, domain.EventTokenCreated, t, c.Placement.Cell)
		e.queueMove(ctx, t, c.Placement.Cell)
		c.resolve(t.ID, nil)
	}
	return applied
}

func (e *Engine) removePending(c *Creation) bool {
	for i, p := range e.pending {
		if p == c {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, BoardID: e.id}
}

func (e *Engine) fireToken(ctx context.Context, hook func(context.Context, *domain.TokenEvent), typ domain.EventType, t *domain.Token, cell domain.Cell) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.TokenEvent{
		EventBase: e.base(typ),
		TokenID:   t.ID,
		Label:     t.Label,
		Cell:      cell,
	})
}

func (e *Engine) notifyPhases(ctx context.Context, changes []PhaseChange) {
	for _, ch := range changes {
		e.logger.DebugContext(ctx, "rotation phase",
			"from", ch.From,
			"to", ch.To,
			"angle", e.rotation.Angle,
		)
		if e.hooks.OnRotationPhase != nil {
			e.hooks.OnRotationPhase(ctx, &domain.RotationEvent{
				EventBase: e.base(domain.EventRotationPhase),
				From:      ch.From,
				To:        ch.To,
				Angle:     e.rotation.Angle,
				Delta:     e.rotation.Delta,
			})
		}
	}
}

// emit sends the difference between the last rendered scene and the current one.
func (e *Engine) emit(ctx context.Context) {
	scene := e.Scene()
	diff := domain.Diff(e.lastScene, &scene)
	e.lastScene = &scene
	if diff == nil || e.renderer == nil {
		return
	}
	if err := e.renderer.Render(ctx, diff); err != nil {
		e.logger.WarnContext(ctx, "renderer failed", "err", err)
	}
}
