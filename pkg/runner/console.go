package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/boardwalk/internal/logging"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/ports"
	"github.com/aretw0/boardwalk/pkg/session"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// BoardRenderer draws a board snapshot as text.
type BoardRenderer func(g domain.Geometry, m domain.Matrix) string

// Console is the interactive text interface.
type Console struct {
	driver *session.Driver
	reader *bufio.Reader
	writer io.Writer
	draw   BoardRenderer
	book   ports.PositionBook
	logger *slog.Logger
	prompt string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// Option configures the Console.
type Option func(*Console)

// WithBoardRenderer draws the board after show and wait.
func WithBoardRenderer(draw BoardRenderer) Option {
	return func(c *Console) {
		c.draw = draw
	}
}

// WithPositionBook enables the load command.
func WithPositionBook(book ports.PositionBook) Option {
	return func(c *Console) {
		c.book = book
	}
}

// WithLogger configures the console logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// WithPrompt replaces the default "> " prompt. An empty prompt disables it.
func WithPrompt(prompt string) Option {
	return func(c *Console) {
		c.prompt = prompt
	}
}

// New creates a console reading commands from r and writing to w.
func New(driver *session.Driver, r io.Reader, w io.Writer, opts ...Option) *Console {
	c := &Console{
		driver: driver,
		reader: bufio.NewReader(r),
		writer: w,
		logger: logging.NewNop(),
		prompt: "> ",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) initPump() {
	c.startOnce.Do(func() {
		c.inputChan = make(chan inputResult)
		go c.pump()
	})
}

func (c *Console) pump() {
	for {
		text, err := c.reader.ReadString('\n')

		// If we got text (even with EOF), send it
		if text != "" {
			c.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.inputChan <- inputResult{err: err}
			}
			close(c.inputChan)
			return
		}
	}
}

// Input reads the next sanitized line. It returns io.EOF when the input ends.
func (c *Console) Input(ctx context.Context) (string, error) {
	c.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(c.writer, c.prompt)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-c.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(res.text)
			if err != nil {
				fmt.Fprintf(c.writer, "error: %v\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// Run executes commands until quit, the end of the input or ctx ends.
// Command failures are printed and the loop continues.
func (c *Console) Run(ctx context.Context) error {
	for {
		line, err := c.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}

		out, err := c.Exec(ctx, line)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			c.logger.Debug("Console command failed", "command", line, "err", err)
			fmt.Fprintf(c.writer, "error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Fprintln(c.writer, strings.TrimRight(out, "\n"))
		}
	}
}
