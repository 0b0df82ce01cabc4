package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/pkg/adapters/memory"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestDriver_TicksUntilSettled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d := newDriver(t)

	require.NoError(t, d.Do(ctx, func(b *boardwalk.Board) error {
		_, err := b.ResolvePosition(ctx, "start")
		return err
	}))
	require.NoError(t, d.Settle(ctx))

	require.NoError(t, d.Do(ctx, func(b *boardwalk.Board) error {
		_, err := b.Move(ctx, "E2", "E4")
		return err
	}))
	require.NoError(t, d.Settle(ctx))

	var text string
	require.NoError(t, d.Do(ctx, func(b *boardwalk.Board) error {
		var err error
		text, err = b.Notation()
		return err
	}))
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR", text)
}

func TestDriver_CommandErrors(t *testing.T) {
	ctx := context.Background()
	d := newDriver(t)

	err := d.Do(ctx, func(b *boardwalk.Board) error {
		_, err := b.Move(ctx, "Z99", "A1")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLabel)

	err = d.Do(ctx, func(*boardwalk.Board) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// The driver survives both.
	assert.NoError(t, d.Do(ctx, func(*boardwalk.Board) error { return nil }))
}

func TestDriver_Stopped(t *testing.T) {
	d := newDriver(t)
	d.Stop()
	d.Stop()

	err := d.Do(context.Background(), func(*boardwalk.Board) error { return nil })
	assert.ErrorIs(t, err, domain.ErrDriverStopped)
}

func TestDriver_ContextCancelled(t *testing.T) {
	b, err := boardwalk.New()
	require.NoError(t, err)
	d := session.NewDriver(b) // never started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = d.Do(ctx, func(*boardwalk.Board) error { return nil })
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDriver_StopWithoutStart(t *testing.T) {
	b, err := boardwalk.New()
	require.NoError(t, err)
	d := session.NewDriver(b)

	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a driver that was never started")
	}

	// A stopped driver stays stopped.
	d.Start(context.Background())
	err = d.Do(context.Background(), func(*boardwalk.Board) error { return nil })
	assert.ErrorIs(t, err, domain.ErrDriverStopped)
	<-d.Done()
}
