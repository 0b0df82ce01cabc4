package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/internal/logging"
	"github.com/aretw0/boardwalk/pkg/domain"
)

// Manager hosts several boards, each behind its own Driver, keyed by board ID.
type Manager struct {
	mu      sync.RWMutex // Global lock for the map
	drivers map[string]*Driver

	// ctx is the parent of every driver loop.
	ctx    context.Context
	cancel context.CancelFunc

	boardOpts  []boardwalk.Option
	driverOpts []DriverOption
	onDelete   func(id string)
	logger     *slog.Logger // Logger for internal events
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager and its drivers.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithBoardOptions sets options applied to every board the Manager creates,
// before the per-call options.
func WithBoardOptions(opts ...boardwalk.Option) Option {
	return func(m *Manager) {
		m.boardOpts = append(m.boardOpts, opts...)
	}
}

// WithDriverOptions sets options applied to every driver.
func WithDriverOptions(opts ...DriverOption) Option {
	return func(m *Manager) {
		m.driverOpts = append(m.driverOpts, opts...)
	}
}

// WithOnDelete registers fn to run after a board is deleted, e.g. to drop its metric series.
func WithOnDelete(fn func(id string)) Option {
	return func(m *Manager) {
		m.onDelete = fn
	}
}

// NewManager creates a Manager whose drivers run until ctx ends or Close is called.
func NewManager(ctx context.Context, opts ...Option) *Manager {
	m := &Manager{
		drivers: make(map[string]*Driver),
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	return m
}

// Create builds a board with a fresh UUID, starts its driver and registers it.
func (m *Manager) Create(opts ...boardwalk.Option) (*Driver, error) {
	id := uuid.NewString()

	boardOpts := make([]boardwalk.Option, 0, len(m.boardOpts)+len(opts)+2)
	boardOpts = append(boardOpts, m.boardOpts...)
	boardOpts = append(boardOpts, opts...)
	boardOpts = append(boardOpts,
		boardwalk.WithID(id),
		boardwalk.WithLogger(m.logger.With("board_id", id)),
	)
	board, err := boardwalk.New(boardOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	driverOpts := append([]DriverOption{WithDriverLogger(m.logger)}, m.driverOpts...)
	d := NewDriver(board, driverOpts...)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx.Err() != nil {
		return nil, domain.ErrDriverStopped
	}
	m.drivers[id] = d
	d.Start(m.ctx)

	m.logger.Debug("board created", "board_id", id)
	return d, nil
}

// Get returns the driver of a board.
func (m *Manager) Get(id string) (*Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrBoardNotFound, id)
	}
	return d, nil
}

// WithBoard runs fn on the driver goroutine of the board.
func (m *Manager) WithBoard(ctx context.Context, id string, fn func(*boardwalk.Board) error) error {
	d, err := m.Get(id)
	if err != nil {
		return err
	}
	return d.Do(ctx, fn)
}

// Delete stops a board's driver and forgets it.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	d, ok := m.drivers[id]
	delete(m.drivers, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrBoardNotFound, id)
	}
	d.Stop()
	if m.onDelete != nil {
		m.onDelete(id)
	}
	m.logger.Debug("board deleted", "board_id", id)
	return nil
}

// List returns the IDs of all hosted boards.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.drivers))
	for id := range m.drivers {
		ids = append(ids, id)
	}
	sort.Strings(ids) // Deterministic order
	return ids
}

// Close stops every driver. The Manager rejects new boards afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.cancel()
	drivers := m.drivers
	m.drivers = make(map[string]*Driver)
	m.mu.Unlock()

	for _, d := range drivers {
		<-d.Done()
	}
}
