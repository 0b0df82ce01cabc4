package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/internal/logging"
	"github.com/aretw0/boardwalk/pkg/domain"
)

// DefaultTickInterval is roughly one frame at 60Hz.
const DefaultTickInterval = 16 * time.Millisecond

// command is a unit of work executed on the driver goroutine.
type command struct {
	fn   func(*boardwalk.Board) error
	done chan error
}

// Driver owns a Board and is the only goroutine that touches it.
// Ticks come from a wall-clock ticker; every other access goes through Do.
type Driver struct {
	board    *boardwalk.Board
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	commands chan command
	stop     chan struct{}
	stopped  chan struct{}

	mu      sync.Mutex
	started bool
	halted  bool
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithTickInterval sets the ticker period (default: DefaultTickInterval).
func WithTickInterval(d time.Duration) DriverOption {
	return func(dr *Driver) {
		dr.interval = d
	}
}

// WithDriverLogger configures a logger for the Driver.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(dr *Driver) {
		dr.logger = logger
	}
}

// WithDriverClock overrides the clock used to measure elapsed time between ticks.
func WithDriverClock(now func() time.Time) DriverOption {
	return func(dr *Driver) {
		dr.now = now
	}
}

// NewDriver creates a driver for board. Call Start to run it.
func NewDriver(board *boardwalk.Board, opts ...DriverOption) *Driver {
	d := &Driver{
		board:    board,
		interval: DefaultTickInterval,
		logger:   logging.NewNop(), // Default to no-op
		now:      time.Now,
		commands: make(chan command),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.interval <= 0 {
		d.interval = DefaultTickInterval
	}
	return d
}

// ID returns the driven board's ID.
func (d *Driver) ID() string {
	return d.board.ID
}

// Start runs the driver loop in a new goroutine until ctx ends or Stop is called.
// Only the first call has an effect, and a stopped driver cannot be restarted.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.halted {
		return
	}
	d.started = true
	go d.run(ctx)
}

func (d *Driver) run(ctx context.Context) {
	defer close(d.stopped)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	last := d.now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stop:
			return
		case cmd := <-d.commands:
			cmd.done <- d.exec(cmd.fn)
		case <-ticker.C:
			now := d.now()
			elapsed := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now
			if elapsed < 0 {
				elapsed = 0
			}
			if err := d.board.Tick(ctx, elapsed); err != nil {
				d.logger.Warn("tick failed", "board_id", d.board.ID, "err", err)
			}
		}
	}
}

// exec runs fn, turning a panic into an error so one bad command cannot kill the board.
func (d *Driver) exec(fn func(*boardwalk.Board) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v", r)
			d.logger.Error("command panicked", "board_id", d.board.ID, "panic", r)
		}
	}()
	return fn(d.board)
}

// Do runs fn on the driver goroutine and returns its error.
// fn must not call Do on the same driver, and must not block on a Creation.
func (d *Driver) Do(ctx context.Context, fn func(*boardwalk.Board) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case d.commands <- cmd:
	case <-d.stopped:
		return domain.ErrDriverStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Settle blocks until the board is idle, polling once per tick interval.
func (d *Driver) Settle(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		var idle bool
		if err := d.Do(ctx, func(b *boardwalk.Board) error {
			idle = b.Idle()
			return nil
		}); err != nil {
			return err
		}
		if idle {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop ends the loop and waits for it to exit. It is safe to call more than once,
// and on a driver that was never started.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.halted {
		d.halted = true
		close(d.stop)
		if !d.started {
			close(d.stopped)
		}
	}
	d.mu.Unlock()
	<-d.stopped
}

// Done is closed once the driver loop has exited.
func (d *Driver) Done() <-chan struct{} {
	return d.stopped
}
