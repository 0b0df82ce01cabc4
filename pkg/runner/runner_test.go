package runner_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/pkg/adapters/memory"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/runner"
	"github.com/aretw0/boardwalk/pkg/session"
)

func newDriver(t *testing.T) *session.Driver {
	t.Helper()
	b, err := boardwalk.New(boardwalk.WithAssetLoader(memory.NewLoader(memory.ChessGlyphs)))
	require.NoError(t, err)
	d := session.NewDriver(b, session.WithTickInterval(time.Millisecond))
	d.Start(context.Background())
	t.Cleanup(d.Stop)
	return d
}

func TestConsole_Run(t *testing.T) {
	input := strings.Join([]string{
		"set 4k3/8/8/8/8/8/8/4K3",
		"wait",
		"move e1 d1",
		"",
		"query D1",
		"bogus",
		"quit",
		"show",
	}, "\n") + "\n"

	var out bytes.Buffer
	c := runner.New(newDriver(t), strings.NewReader(input), &out, runner.WithPrompt(""))
	require.NoError(t, c.Run(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"stay=0 moves=0 creates=2 discards=0",
		"4k3/8/8/8/8/8/8/4K3",
		"moving E1 -> D1",
		"K",
		`error: unknown command "bogus", try help`,
	}, lines, "commands after quit are not executed")
}

func TestConsole_Exec(t *testing.T) {
	ctx := context.Background()
	book := memory.NewBook(map[string]string{"lone": "8/8/8/8/8/8/8/7K"})
	d := newDriver(t)
	c := runner.New(d, strings.NewReader(""), &bytes.Buffer{},
		runner.WithPositionBook(book),
		runner.WithBoardRenderer(func(g domain.Geometry, m domain.Matrix) string { return "<board>\n" }),
	)

	tests := []struct {
		line    string
		want    string
		wantErr error
	}{
		{line: "load lone", want: "stay=0 moves=0 creates=1 discards=0"},
		{line: "load missing", wantErr: domain.ErrPositionNotFound},
		{line: "query Z9", wantErr: domain.ErrInvalidLabel},
		{line: "query a1", want: "empty"},
		{line: "move a1 a2", want: "A1 is empty"},
		{line: "set 8/8", wantErr: domain.ErrInvalidNotation},
		{line: "rotate ninety", wantErr: domain.ErrInvalidConfiguration},
		{line: "scale 0", wantErr: domain.ErrInvalidConfiguration},
		{line: "angle 45.5", wantErr: domain.ErrInvalidConfiguration},
		{line: "wait", want: "8/8/8/8/8/8/8/7K\n<board>\n"},
		{line: "quit", wantErr: runner.ErrQuit},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := c.Exec(ctx, tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsole_Rotate(t *testing.T) {
	ctx := context.Background()
	c := runner.New(newDriver(t), strings.NewReader(""), &bytes.Buffer{})

	_, err := c.Exec(ctx, "rotate 180")
	require.NoError(t, err)
	out, err := c.Exec(ctx, "wait")
	require.NoError(t, err)
	assert.Contains(t, out, "angle=180 phase=idle idle=true")
}

func TestConsole_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, w := io.Pipe()
	defer w.Close()
	c := runner.New(newDriver(t), r, &bytes.Buffer{})

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("console did not stop on cancel")
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "  move e2 e4 \r\n", want: "move e2 e4"},
		{in: "set\t8/8", want: "set 8/8"},
		{in: "show\x1b[2J", want: "show[2J"},
		{in: string([]byte{0xff, 0xfe}), wantErr: runner.ErrInvalidUTF8},
		{in: strings.Repeat("a", runner.MaxInputSize+1), wantErr: runner.ErrInputTooLarge},
	}
	for _, tt := range tests {
		got, err := runner.SanitizeInput(tt.in)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
