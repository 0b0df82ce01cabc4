package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/boardwalk"
	"github.com/aretw0/boardwalk/pkg/domain"
	"github.com/aretw0/boardwalk/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(ctx,
		session.WithBoardOptions(boardwalk.WithAnimation(false)),
		session.WithDriverOptions(session.WithTickInterval(time.Millisecond)),
	)
	defer m.Close()

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, m.List(), 2)

	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, m.Delete(a.ID()))
	_, err = m.Get(a.ID())
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)
	assert.ErrorIs(t, m.Delete(a.ID()), domain.ErrBoardNotFound)
	assert.Equal(t, []string{b.ID()}, m.List())
}

func TestManager_InvalidBoardOptions(t *testing.T) {
	m := session.NewManager(context.Background())
	defer m.Close()

	_, err := m.Create(boardwalk.WithSqueezeFactor(2))
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.Empty(t, m.List())
}

// Concurrent commands against one board are serialized by its driver.
func TestManager_ConcurrentCommands(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(ctx, session.WithBoardOptions(boardwalk.WithAnimation(false)))
	defer m.Close()

	d, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.WithBoard(ctx, d.ID(), func(b *boardwalk.Board) error {
		_, err := b.ResolvePosition(ctx, "8/8/8/8/8/8/8/K7")
		return err
	}))
	require.NoError(t, d.Settle(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			to := "H1"
			if i%2 == 0 {
				to = "A1"
			}
			_ = m.WithBoard(ctx, d.ID(), func(b *boardwalk.Board) error {
				tok := b.Tokens()[0]
				return b.MoveToken(ctx, tok.ID, to)
			})
		}(i)
	}
	wg.Wait()
	require.NoError(t, d.Settle(ctx))

	var count int
	require.NoError(t, m.WithBoard(ctx, d.ID(), func(b *boardwalk.Board) error {
		count = len(b.Tokens())
		return nil
	}))
	assert.Equal(t, 1, count)

	err = m.WithBoard(ctx, "missing", func(*boardwalk.Board) error { return nil })
	assert.ErrorIs(t, err, domain.ErrBoardNotFound)
}

func TestManager_Close(t *testing.T) {
	m := session.NewManager(context.Background())
	d, err := m.Create()
	require.NoError(t, err)

	m.Close()
	<-d.Done()
	assert.Empty(t, m.List())

	_, err = m.Create()
	assert.ErrorIs(t, err, domain.ErrDriverStopped)
}

func TestManager_OnDelete(t *testing.T) {
	var deleted []string
	m := session.NewManager(context.Background(),
		session.WithOnDelete(func(id string) { deleted = append(deleted, id) }),
	)
	defer m.Close()

	d, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Delete(d.ID()))
	assert.ErrorIs(t, m.Delete(d.ID()), domain.ErrBoardNotFound)
	assert.Equal(t, []string{d.ID()}, deleted, "unknown boards do not trigger the callback")
}
