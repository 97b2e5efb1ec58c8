package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

// サービス層のエラー
var (
	ErrNotFound = errors.New("game not found")
	ErrNoMove   = errors.New("move does not change the board")
)

// Snapshot は1ゲームの外部向けの状態
type Snapshot struct {
	ID       string       `json:"id"`
	Grid     domain.Board `json:"grid"`
	Score    int          `json:"score"`
	Moves    int          `json:"moves"`
	GameOver bool         `json:"game_over"`
	Updated  time.Time    `json:"updated_at"`
}

type session struct {
	id      string
	game    *domain.Game
	created time.Time
	updated time.Time
}

func (s *session) snapshot() Snapshot {
	return Snapshot{
		ID:       s.id,
		Grid:     s.game.Board(),
		Score:    s.game.Score(),
		Moves:    s.game.Moves(),
		GameOver: s.game.IsGameOver(),
		Updated:  s.updated,
	}
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
}

// send は受信側が遅れている場合、最新のSnapshotだけを残す
func (s *subscriber) send(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snap:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Service はメモリ上のゲームと購読者を管理する
type Service struct {
	mu    sync.Mutex
	games map[string]*session
	subs  map[string]map[*subscriber]struct{}
	now   func() time.Time
}

// NewService は空のServiceを生成する
func NewService() *Service {
	return &Service{
		games: make(map[string]*session),
		subs:  make(map[string]map[*subscriber]struct{}),
		now:   time.Now,
	}
}

// CreateGame はseedで初期化した新しいゲームを開始する
func (s *Service) CreateGame(seed int64) Snapshot {
	return s.register(domain.NewGame(rand.New(rand.NewSource(seed))))
}

// CreateGameFromBoard は指定した盤面からゲームを開始する
func (s *Service) CreateGameFromBoard(board domain.Board, score int, seed int64) Snapshot {
	return s.register(domain.NewGameFromBoard(board, score, rand.New(rand.NewSource(seed))))
}

func (s *Service) register(game *domain.Game) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &session{id: uuid.NewString(), game: game, created: now, updated: now}
	s.games[sess.id] = sess
	return sess.snapshot()
}

// Get はゲームの現在のSnapshotを返す
func (s *Service) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return sess.snapshot(), nil
}

// Move は手を適用して購読者に配信する
// 盤面が変化しない手は変化前のSnapshotとErrNoMoveを返す
func (s *Service) Move(id string, dir domain.Direction) (Snapshot, error) {
	s.mu.Lock()
	sess, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, ErrNotFound
	}
	if !sess.game.Move(dir) {
		snap := sess.snapshot()
		s.mu.Unlock()
		return snap, ErrNoMove
	}
	sess.updated = s.now()
	snap := sess.snapshot()
	subs := s.copySubsLocked(id)
	s.mu.Unlock()

	for sub := range subs {
		sub.send(snap)
	}
	return snap, nil
}

// Delete はゲームを削除し購読を閉じる
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	if _, ok := s.games[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.games, id)
	subs := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()

	for sub := range subs {
		sub.close()
	}
	return nil
}

// Subscribe はゲームの購読者を登録する
// チャネルには最初に現在のSnapshotが入る。ctxの終了・解除関数の呼び出し・ゲームの削除で閉じられる
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan Snapshot, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.games[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan Snapshot, 1)}
	sub.ch <- sess.snapshot()
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
