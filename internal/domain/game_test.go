package domain

import (
	"math/rand"
	"testing"
)

func TestNewGame(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	game := NewGame(rng)

	if game.Score() != 0 {
		t.Errorf("initial score should be 0, got %d", game.Score())
	}
	if n := len(game.Board().EmptyCells()); n != 14 {
		t.Errorf("expected two spawned tiles, got %d empty cells", n)
	}
}

func TestGameMove(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	game := NewGame(rng)

	for i := 0; i < 10; i++ {
		before := game.Board()
		dir := Directions[i%4]
		moved := game.Move(dir)
		if moved != IsMoveValid(before, dir) {
			t.Errorf("Move(%s) = %v, but IsMoveValid = %v", dir, moved, !moved)
		}
		if !moved && !game.Board().Equal(before) {
			t.Errorf("board changed on an invalid move")
		}
	}
}

func TestGameScoreIncreases(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	game := NewGameFromBoard(NewBoardFromCells([4][4]int{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}), 0, rng)

	moved := game.Move(Left)
	if !moved {
		t.Error("expected move to succeed")
	}

	if game.Score() != 4 {
		t.Errorf("expected score 4, got %d", game.Score())
	}
	if game.Moves() != 1 {
		t.Errorf("expected 1 move, got %d", game.Moves())
	}
	if game.Board().Get(0, 0) != 4 {
		t.Errorf("expected merged tile at top-left, got %d", game.Board().Get(0, 0))
	}
	if n := len(game.Board().EmptyCells()); n != 14 {
		t.Errorf("expected a new tile after the move, got %d empty cells", n)
	}
}

func TestGameSpawnValues(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	twos, fours := 0, 0
	for i := 0; i < 500; i++ {
		game := NewGameFromBoard(NewBoard(), 0, rng)
		game.spawnTile()
		switch game.Board().MaxTile() {
		case 2:
			twos++
		case 4:
			fours++
		default:
			t.Fatalf("unexpected spawn value %d", game.Board().MaxTile())
		}
	}
	if twos <= fours {
		t.Errorf("expected 2 to spawn far more often than 4: twos=%d fours=%d", twos, fours)
	}
}
