package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

// StateProvider は観測中のゲームの盤面とスコアを返す
type StateProvider interface {
	Grid(ctx context.Context) (domain.Board, error)
	Score(ctx context.Context) (int, error)
}

// MoveDispatcher はゲームに手を送る（結果は次のGridで観測する）
type MoveDispatcher interface {
	ApplyMove(ctx context.Context, dir domain.Direction) error
}

// Driver は自動プレイの対象となるゲーム
type Driver interface {
	StateProvider
	MoveDispatcher
}

// Planner は盤面から次の手を決める
type Planner interface {
	Analyze(board domain.Board) domain.Analysis
}

// AutoPlayConfig は自動プレイの設定
type AutoPlayConfig struct {
	// Delay は状態を読む前の待ち時間（アニメーション待ち）
	Delay time.Duration
	// MaxMoves は上限手数（0なら無制限）
	MaxMoves int
}

// Result は自動プレイの結果
type Result struct {
	Score    int
	Moves    int
	MaxTile  int
	Final    domain.Board
	GameOver bool
}

// AutoPlay は動ける手がなくなるまで盤面の取得と手の送信を繰り返す
func AutoPlay(ctx context.Context, d Driver, planner Planner, config AutoPlayConfig, log zerolog.Logger) (Result, error) {
	var res Result
	start := time.Now()

	for config.MaxMoves == 0 || res.Moves < config.MaxMoves {
		if err := sleep(ctx, config.Delay); err != nil {
			return res, err
		}

		board, err := d.Grid(ctx)
		if err != nil {
			return res, fmt.Errorf("read grid: %w", err)
		}
		res.Final = board

		if len(domain.PossibleMoves(board)) == 0 {
			res.GameOver = true
			break
		}

		a := planner.Analyze(board)
		log.Debug().
			Int("move", res.Moves+1).
			Stringer("direction", a.Best).
			Interface("scores", a.Moves).
			Int("nodes", a.Nodes).
			Int("cache_hits", a.CacheHits).
			Msg("decided")

		if err := d.ApplyMove(ctx, a.Best); err != nil {
			return res, fmt.Errorf("apply %s: %w", a.Best, err)
		}
		res.Moves++
	}

	score, err := d.Score(ctx)
	if err != nil {
		return res, fmt.Errorf("read score: %w", err)
	}
	if !res.GameOver {
		// 上限手数で止めた場合は最後の手の結果を読み直す
		if res.Final, err = d.Grid(ctx); err != nil {
			return res, fmt.Errorf("read grid: %w", err)
		}
	}
	res.Score = score
	res.MaxTile = res.Final.MaxTile()

	log.Info().
		Int("score", res.Score).
		Int("moves", res.Moves).
		Int("max_tile", res.MaxTile).
		Bool("game_over", res.GameOver).
		Dur("elapsed", time.Since(start)).
		Msg("autoplay finished")

	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
