package domain

// Evaluator はBoardを評価してスコアを返すインターフェース
type Evaluator interface {
	Evaluate(b Board) float64
}

// Weights はヒューリスティック評価の各特徴量の係数
type Weights struct {
	Empty        float64 `json:"empty"`
	Monotonicity float64 `json:"monotonicity"`
	Smoothness   float64 `json:"smoothness"`
	MaxPosition  float64 `json:"max_position"`
}

// DefaultWeights はデフォルトの係数を返す
func DefaultWeights() Weights {
	return Weights{
		Empty:        10.0,
		Monotonicity: 1.0,
		Smoothness:   0.1,
		MaxPosition:  100.0,
	}
}

// NewHeuristicEvaluator は空きマス・行の単調性・滑らかさ・最大タイル位置の重み付き和で評価するEvaluatorを返す
func NewHeuristicEvaluator(w Weights) *WeightedEvaluator {
	return NewWeightedEvaluator(
		[]Evaluator{
			&EmptyCellsEvaluator{},
			&RowMonotonicityEvaluator{},
			&SmoothnessEvaluator{},
			&CornerBonusEvaluator{},
		},
		[]float64{w.Empty, w.Monotonicity, w.Smoothness, w.MaxPosition},
	)
}

// WeightedEvaluator は複数のEvaluatorを係数付きで組み合わせる
type WeightedEvaluator struct {
	evaluators []Evaluator
	weights    []float64
}

// NewWeightedEvaluator は係数付きEvaluatorを生成する
func NewWeightedEvaluator(evaluators []Evaluator, weights []float64) *WeightedEvaluator {
	return &WeightedEvaluator{
		evaluators: evaluators,
		weights:    weights,
	}
}

// Evaluate は全てのEvaluatorの重み付き和を返す（正規化なし）
func (w *WeightedEvaluator) Evaluate(b Board) float64 {
	score := 0.0
	for i, ev := range w.evaluators {
		score += w.weights[i] * ev.Evaluate(b)
	}
	return score
}

// EmptyCellsEvaluator は空きマス数で評価する
type EmptyCellsEvaluator struct{}

func (e *EmptyCellsEvaluator) Evaluate(b Board) float64 {
	count := 0
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if b.cells[r][c] == 0 {
				count++
			}
		}
	}
	return float64(count)
}

// RowMonotonicityEvaluator は各行の単調性で評価する
// 左から見て非増加のペアと右から見て非増加のペアを両方数える（列は見ない）
type RowMonotonicityEvaluator struct{}

func (e *RowMonotonicityEvaluator) Evaluate(b Board) float64 {
	score := 0.0
	for r := 0; r < 4; r++ {
		for c := 0; c < 3; c++ {
			if b.cells[r][c] >= b.cells[r][c+1] {
				score++
			}
		}
		for c := 1; c < 4; c++ {
			if b.cells[r][c] >= b.cells[r][c-1] {
				score++
			}
		}
	}
	return score
}

// SmoothnessEvaluator は隣接タイルの値の差で評価する（差が小さいほど高評価）
// 空きマスとの差も含める
type SmoothnessEvaluator struct{}

func (e *SmoothnessEvaluator) Evaluate(b Board) float64 {
	penalty := 0
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			v := b.cells[r][c]
			// 右隣
			if c < 3 {
				penalty += abs(v - b.cells[r][c+1])
			}
			// 下隣
			if r < 3 {
				penalty += abs(v - b.cells[r+1][c])
			}
		}
	}
	return -float64(penalty)
}

// CornerBonusEvaluator は最大タイルが角にあると1、そうでなければ0
// 最大値が複数ある場合は行優先で最初に見つかったものを使う
type CornerBonusEvaluator struct{}

func (e *CornerBonusEvaluator) Evaluate(b Board) float64 {
	maxVal := 0
	maxRow, maxCol := -1, -1

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if v := b.cells[r][c]; v > maxVal {
				maxVal = v
				maxRow, maxCol = r, c
			}
		}
	}

	isCorner := (maxRow == 0 || maxRow == 3) && (maxCol == 0 || maxCol == 3)
	if isCorner {
		return 1.0
	}
	return 0.0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
