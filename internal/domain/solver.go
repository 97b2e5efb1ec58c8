package domain

// スポーン確率（2が90%、4が10%）
const (
	spawn2Prob = 0.9
	spawn4Prob = 0.1
)

// NodeKind は探索ノードの種類
type NodeKind int

const (
	// Player はプレイヤーが最大化する手番
	Player NodeKind = iota
	// Chance はランダムにタイルが出現する手番
	Chance
)

func (k NodeKind) String() string {
	if k == Player {
		return "player"
	}
	return "chance"
}

// MoveScore は1方向の探索結果
type MoveScore struct {
	Direction Direction `json:"direction"`
	Score     float64   `json:"score"`
	Valid     bool      `json:"valid"`
}

// Analysis はBestMoveの判断材料
type Analysis struct {
	Best  Direction
	Moves [4]MoveScore
	// Nodes は評価関数を呼んだ葉を含む訪問ノード数
	Nodes int
	// CacheHits は置換表でスキップしたノード数
	CacheHits int
}

// Solver はExpectimaxアルゴリズムで最良の手を探索する
type Solver struct {
	evaluator Evaluator
	maxDepth  int
	cache     bool
}

// SolverOption はSolverの設定を変更する
type SolverOption func(*Solver)

// WithCache は1回の探索内で置換表を使う
// 結果の値は置換表の有無で変わらない
func WithCache(enabled bool) SolverOption {
	return func(s *Solver) {
		s.cache = enabled
	}
}

// NewSolver は新しいSolverを生成する
func NewSolver(evaluator Evaluator, maxDepth int, opts ...SolverOption) *Solver {
	s := &Solver{
		evaluator: evaluator,
		maxDepth:  maxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxDepth は探索深さを返す
func (s *Solver) MaxDepth() int {
	return s.maxDepth
}

// BestMove は現在の盤面から最良の手を返す
// 有効な手がない場合はLeftを返す
func (s *Solver) BestMove(board Board) Direction {
	return s.Analyze(board).Best
}

// Analyze は各方向の期待値を計算し、最良の手とともに返す
// 同点の場合は正準順序で先の方向を選ぶ
func (s *Solver) Analyze(board Board) Analysis {
	st := s.newState()
	a := Analysis{Best: Left}
	found := false
	bestScore := 0.0

	for i, dir := range Directions {
		a.Moves[i].Direction = dir
		newBoard := SimulateMove(board, dir)
		if newBoard.Equal(board) {
			continue
		}

		// スポーン後の期待値を計算
		score := st.search(newBoard, s.maxDepth, Chance)
		a.Moves[i].Score = score
		a.Moves[i].Valid = true

		if !found || score > bestScore {
			found = true
			bestScore = score
			a.Best = dir
		}
	}

	a.Nodes = st.nodes
	a.CacheHits = st.hits
	return a
}

// Search は盤面のExpectimax値を返す
func (s *Solver) Search(board Board, depth int, kind NodeKind) float64 {
	return s.newState().search(board, depth, kind)
}

type nodeKey struct {
	board BitBoard
	depth int
	kind  NodeKind
}

// searchState は1回の探索で共有するカウンタと置換表
type searchState struct {
	solver *Solver
	table  map[nodeKey]float64
	nodes  int
	hits   int
}

func (s *Solver) newState() *searchState {
	st := &searchState{solver: s}
	if s.cache {
		st.table = make(map[nodeKey]float64)
	}
	return st
}

func (st *searchState) search(board Board, depth int, kind NodeKind) float64 {
	if depth <= 0 {
		st.nodes++
		return st.solver.evaluator.Evaluate(board)
	}

	var key nodeKey
	cacheable := false
	if st.table != nil {
		if bb, ok := NewBitBoard(board); ok {
			key = nodeKey{board: bb, depth: depth, kind: kind}
			cacheable = true
			if v, hit := st.table[key]; hit {
				st.hits++
				return v
			}
		}
	}

	st.nodes++
	var v float64
	if kind == Player {
		v = st.searchMax(board, depth)
	} else {
		v = st.expectedScore(board, depth)
	}

	if cacheable {
		st.table[key] = v
	}
	return v
}

// searchMax はプレイヤーの最善手を探索
func (st *searchState) searchMax(board Board, depth int) float64 {
	bestScore := 0.0
	hasMoved := false

	for _, dir := range Directions {
		newBoard := SimulateMove(board, dir)
		if newBoard.Equal(board) {
			continue
		}

		score := st.search(newBoard, depth-1, Chance)
		if !hasMoved || score > bestScore {
			bestScore = score
		}
		hasMoved = true
	}

	if !hasMoved {
		return st.solver.evaluator.Evaluate(board)
	}
	return bestScore
}

// expectedScore はスポーンの期待値を計算する
// 空きマスは等確率で選ばれるものとして平均する
func (st *searchState) expectedScore(board Board, depth int) float64 {
	emptyCells := board.EmptyCells()
	if len(emptyCells) == 0 {
		return st.solver.evaluator.Evaluate(board)
	}

	totalScore := 0.0
	for _, pos := range emptyCells {
		// Setはコピーを返すので兄弟ノードに影響しない
		score2 := st.search(board.Set(pos[0], pos[1], 2), depth-1, Player)
		totalScore += spawn2Prob * score2

		score4 := st.search(board.Set(pos[0], pos[1], 4), depth-1, Player)
		totalScore += spawn4Prob * score4
	}

	return totalScore / float64(len(emptyCells))
}
