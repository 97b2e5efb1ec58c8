package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

func TestCreateAndGet(t *testing.T) {
	s := NewService()
	snap := s.CreateGame(42)
	require.NotEmpty(t, snap.ID)
	require.Len(t, snap.Grid.EmptyCells(), 14)
	require.Zero(t, snap.Score)

	got, err := s.Get(snap.ID)
	require.NoError(t, err)
	require.True(t, got.Grid.Equal(snap.Grid))

	_, err = s.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMove(t *testing.T) {
	s := NewService()
	board := domain.NewBoardFromCells([4][4]int{{2, 2, 0, 0}})
	snap := s.CreateGameFromBoard(board, 0, 1)

	next, err := s.Move(snap.ID, domain.Left)
	require.NoError(t, err)
	require.Equal(t, 4, next.Score)
	require.Equal(t, 1, next.Moves)
	require.Equal(t, 4, next.Grid.Get(0, 0))

	_, err = s.Move(snap.ID, domain.Direction(9))
	require.ErrorIs(t, err, ErrNoMove)

	_, err = s.Move("missing", domain.Left)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMoveNoChange(t *testing.T) {
	s := NewService()
	snap := s.CreateGameFromBoard(domain.NewBoardFromCells([4][4]int{{2, 0, 0, 0}}), 0, 1)

	same, err := s.Move(snap.ID, domain.Left)
	require.ErrorIs(t, err, ErrNoMove)
	require.True(t, same.Grid.Equal(snap.Grid))
	require.Zero(t, same.Moves)
}

func TestSubscribe(t *testing.T) {
	s := NewService()
	snap := s.CreateGameFromBoard(domain.NewBoardFromCells([4][4]int{{2, 2, 0, 0}}), 0, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, unsub, err := s.Subscribe(ctx, snap.ID)
	require.NoError(t, err)

	first := <-ch
	require.True(t, first.Grid.Equal(snap.Grid))

	_, err = s.Move(snap.ID, domain.Left)
	require.NoError(t, err)

	select {
	case update := <-ch:
		require.Equal(t, 4, update.Score)
	case <-time.After(time.Second):
		t.Fatal("expected an update")
	}

	unsub()
	_, ok := <-ch
	require.False(t, ok, "channel should be closed after unsubscribe")

	_, _, err = s.Subscribe(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubscribeKeepsLatest(t *testing.T) {
	s := NewService()
	snap := s.CreateGame(5)

	ch, unsub, err := s.Subscribe(context.Background(), snap.ID)
	require.NoError(t, err)
	defer unsub()

	var last Snapshot
	for _, dir := range domain.Directions {
		if next, err := s.Move(snap.ID, dir); err == nil {
			last = next
		}
	}

	got := <-ch
	if last.ID != "" {
		require.Equal(t, last.Moves, got.Moves)
	}
}

func TestDeleteClosesSubscribers(t *testing.T) {
	s := NewService()
	snap := s.CreateGame(1)
	ch, _, err := s.Subscribe(context.Background(), snap.ID)
	require.NoError(t, err)
	<-ch

	require.NoError(t, s.Delete(snap.ID))
	_, ok := <-ch
	require.False(t, ok)
	require.ErrorIs(t, s.Delete(snap.ID), ErrNotFound)
}
