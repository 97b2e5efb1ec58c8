package usecase

import (
	"context"
	"math/rand"
	"sync"

	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

// LocalDriver はプロセス内のGameをDriverとして扱う
type LocalDriver struct {
	mu   sync.Mutex
	game *domain.Game
}

// NewLocalDriver は新しいゲームを開始する
func NewLocalDriver(rng *rand.Rand) *LocalDriver {
	return &LocalDriver{game: domain.NewGame(rng)}
}

// NewLocalDriverFromGame は既存のゲームを包む
func NewLocalDriverFromGame(game *domain.Game) *LocalDriver {
	return &LocalDriver{game: game}
}

func (l *LocalDriver) Grid(ctx context.Context) (domain.Board, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.game.Board(), nil
}

func (l *LocalDriver) Score(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.game.Score(), nil
}

// ApplyMove は盤面が変化しない手でもエラーにしない
func (l *LocalDriver) ApplyMove(ctx context.Context, dir domain.Direction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.game.Move(dir)
	return nil
}
