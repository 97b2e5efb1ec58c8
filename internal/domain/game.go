package domain

import "math/rand"

// Game は2048ゲームの状態を管理する
type Game struct {
	board Board
	score int
	moves int
	rng   *rand.Rand
}

// NewGame は新しいゲームを開始する
func NewGame(rng *rand.Rand) *Game {
	g := &Game{
		board: NewBoard(),
		rng:   rng,
	}
	// 初期配置として2つのタイルを配置
	g.spawnTile()
	g.spawnTile()
	return g
}

// NewGameFromBoard は指定した盤面からゲームを再開する
func NewGameFromBoard(board Board, score int, rng *rand.Rand) *Game {
	return &Game{
		board: board,
		score: score,
		rng:   rng,
	}
}

// Board は現在の盤面を返す
func (g *Game) Board() Board {
	return g.board
}

// Score は現在のスコアを返す
func (g *Game) Score() int {
	return g.score
}

// Moves は盤面を変化させた手の数を返す
func (g *Game) Moves() int {
	return g.moves
}

// IsGameOver はゲームオーバーかどうかを返す
func (g *Game) IsGameOver() bool {
	return g.board.IsGameOver()
}

// Move は指定した方向にスワイプを実行する
// 盤面が変化した場合はtrueを返す
func (g *Game) Move(dir Direction) bool {
	newBoard, score := g.board.Move(dir)

	if newBoard.Equal(g.board) {
		return false
	}

	g.score += score
	g.moves++
	g.board = newBoard
	g.spawnTile()
	return true
}

// spawnTile は空きマスにランダムにタイルを配置する（2が90%、4が10%）
func (g *Game) spawnTile() {
	empty := g.board.EmptyCells()
	if len(empty) == 0 {
		return
	}

	pos := empty[g.rng.Intn(len(empty))]
	val := 2
	if g.rng.Float64() >= spawn2Prob {
		val = 4
	}
	g.board = g.board.Set(pos[0], pos[1], val)
}
