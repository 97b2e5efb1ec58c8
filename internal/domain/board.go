package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction はスワイプの方向を表す
// 定数の並び（Left, Right, Up, Down）が列挙とタイブレークの順序になる
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions は正準順序の方向一覧
var Directions = [4]Direction{Left, Right, Up, Down}

var directionNames = [4]string{"left", "right", "up", "down"}

func (d Direction) String() string {
	if d < Left || d > Down {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection は "left" / "L" / "a" などの表記から方向を得る
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l", "a":
		return Left, true
	case "right", "r", "d":
		return Right, true
	case "up", "u", "w":
		return Up, true
	case "down", "s":
		return Down, true
	default:
		return 0, false
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if d < Left || d > Down {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(directionNames[d]), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	dir, ok := ParseDirection(string(text))
	if !ok {
		return fmt.Errorf("invalid direction %q", string(text))
	}
	*d = dir
	return nil
}

// Board は4x4の2048ゲーム盤面を表す（immutable）
type Board struct {
	cells [4][4]int
}

// NewBoard は空のBoardを生成する
func NewBoard() Board {
	return Board{}
}

// NewBoardFromCells はセルの値を指定してBoardを生成する（検証なし）
func NewBoardFromCells(cells [4][4]int) Board {
	return Board{cells: cells}
}

// NewBoardFromRows は外部から受け取った行データを検証してBoardを生成する
func NewBoardFromRows(rows [][]int) (Board, error) {
	if len(rows) != 4 {
		return Board{}, &InvalidGridError{Reason: fmt.Sprintf("expected 4 rows, got %d", len(rows)), Row: -1, Col: -1}
	}
	var cells [4][4]int
	for r, row := range rows {
		if len(row) != 4 {
			return Board{}, &InvalidGridError{Reason: fmt.Sprintf("expected 4 columns, got %d", len(row)), Row: r, Col: -1}
		}
		for c, v := range row {
			if v < 0 {
				return Board{}, &InvalidGridError{Reason: fmt.Sprintf("negative value %d", v), Row: r, Col: c}
			}
			cells[r][c] = v
		}
	}
	return Board{cells: cells}, nil
}

// NewBoardFromFlat は行優先16要素の配列からBoardを生成する
func NewBoardFromFlat(values []int) (Board, error) {
	if len(values) != 16 {
		return Board{}, &InvalidGridError{Reason: fmt.Sprintf("expected 16 cells, got %d", len(values)), Row: -1, Col: -1}
	}
	rows := make([][]int, 4)
	for r := 0; r < 4; r++ {
		rows[r] = values[r*4 : r*4+4]
	}
	return NewBoardFromRows(rows)
}

// Get は指定した位置のセル値を取得する
func (b Board) Get(row, col int) int {
	return b.cells[row][col]
}

// Set は指定した位置に値を設定した新しいBoardを返す
func (b Board) Set(row, col, value int) Board {
	b.cells[row][col] = value
	return b
}

// Cells はセルのコピーを返す
func (b Board) Cells() [4][4]int {
	return b.cells
}

// Rows は行ごとのスライスを返す
func (b Board) Rows() [][]int {
	rows := make([][]int, 4)
	for r := 0; r < 4; r++ {
		rows[r] = append([]int(nil), b.cells[r][:]...)
	}
	return rows
}

// EmptyCells は空のセルの座標一覧を行優先で返す
func (b Board) EmptyCells() [][2]int {
	empty := make([][2]int, 0, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if b.cells[r][c] == 0 {
				empty = append(empty, [2]int{r, c})
			}
		}
	}
	return empty
}

// MaxTile は最大タイルの値を返す
func (b Board) MaxTile() int {
	max := 0
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if b.cells[r][c] > max {
				max = b.cells[r][c]
			}
		}
	}
	return max
}

// Sum はタイル値の総和を返す
func (b Board) Sum() int {
	sum := 0
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			sum += b.cells[r][c]
		}
	}
	return sum
}

// Move は指定した方向にスワイプした結果の盤面と、マージで得たスコアを返す（spawnなし）
func (b Board) Move(dir Direction) (Board, int) {
	var next Board
	totalScore := 0

	for i := 0; i < 4; i++ {
		var line [4]int
		switch dir {
		case Left, Right:
			line = b.getRow(i)
		case Up, Down:
			line = b.getCol(i)
		default:
			return b, 0
		}

		reverse := dir == Right || dir == Down
		if reverse {
			line = reverseLine(line)
		}
		merged, score := mergeLine(line)
		if reverse {
			merged = reverseLine(merged)
		}
		totalScore += score

		for j := 0; j < 4; j++ {
			if dir == Left || dir == Right {
				next.cells[i][j] = merged[j]
			} else {
				next.cells[j][i] = merged[j]
			}
		}
	}

	return next, totalScore
}

// SimulateMove は盤面を変更せずにスワイプ後の盤面を返す
func SimulateMove(b Board, dir Direction) Board {
	next, _ := b.Move(dir)
	return next
}

// IsMoveValid はスワイプで盤面が1マスでも変化するかを返す
func IsMoveValid(b Board, dir Direction) bool {
	return !SimulateMove(b, dir).Equal(b)
}

// PossibleMoves は有効な方向を正準順序で返す
func PossibleMoves(b Board) []Direction {
	moves := make([]Direction, 0, 4)
	for _, dir := range Directions {
		if IsMoveValid(b, dir) {
			moves = append(moves, dir)
		}
	}
	return moves
}

// getRow は指定した行を配列として返す
func (b Board) getRow(row int) [4]int {
	return b.cells[row]
}

// getCol は指定した列を配列として返す
func (b Board) getCol(col int) [4]int {
	var result [4]int
	for r := 0; r < 4; r++ {
		result[r] = b.cells[r][col]
	}
	return result
}

// mergeLine は1行/1列を先頭方向に詰めてマージし、結果とスコアを返す
// マージで生まれたタイルは同じ手の中で再びマージしない
func mergeLine(line [4]int) ([4]int, int) {
	var nonZero [4]int
	n := 0
	for _, v := range line {
		if v != 0 {
			nonZero[n] = v
			n++
		}
	}

	var result [4]int
	score := 0
	w := 0
	for i := 0; i < n; i++ {
		if i+1 < n && nonZero[i] == nonZero[i+1] {
			result[w] = nonZero[i] * 2
			score += result[w]
			i++ // 次の要素をスキップ
		} else {
			result[w] = nonZero[i]
		}
		w++
	}
	return result, score
}

// reverseLine は配列を反転する
func reverseLine(line [4]int) [4]int {
	return [4]int{line[3], line[2], line[1], line[0]}
}

// IsGameOver は全方向にスワイプできない（ゲームオーバー）かどうかを返す
func (b Board) IsGameOver() bool {
	for _, dir := range Directions {
		if IsMoveValid(b, dir) {
			return false
		}
	}
	return true
}

// Equal は2つのBoardが等しいかどうかを返す
func (b Board) Equal(other Board) bool {
	return b.cells == other.cells
}

// MarshalJSON は4行の二次元配列として書き出す
func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

// UnmarshalJSON は4x4の二次元配列か16要素の一次元配列を受け付ける
func (b *Board) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &InvalidGridError{Reason: "grid must be an array", Row: -1, Col: -1, Err: err}
	}

	if len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw[0])), "[") {
		var rows [][]int
		if err := json.Unmarshal(data, &rows); err != nil {
			return &InvalidGridError{Reason: "rows must hold integers", Row: -1, Col: -1, Err: err}
		}
		board, err := NewBoardFromRows(rows)
		if err != nil {
			return err
		}
		*b = board
		return nil
	}

	var flat []int
	if err := json.Unmarshal(data, &flat); err != nil {
		return &InvalidGridError{Reason: "cells must be integers", Row: -1, Col: -1, Err: err}
	}
	board, err := NewBoardFromFlat(flat)
	if err != nil {
		return err
	}
	*b = board
	return nil
}

// String はBoardをASCIIアートとして表示する
func (b Board) String() string {
	line := "+------+------+------+------+"
	var sb strings.Builder
	sb.WriteString(line + "\n")
	for r := 0; r < 4; r++ {
		sb.WriteString("|")
		for c := 0; c < 4; c++ {
			if b.cells[r][c] == 0 {
				sb.WriteString("      |")
			} else {
				fmt.Fprintf(&sb, "%5d |", b.cells[r][c])
			}
		}
		sb.WriteString("\n" + line + "\n")
	}
	return sb.String()
}
