package domain

import (
	"math/bits"
)

// BitBoard は2048の盤面を64ビット整数で表現
// 各タイルは4ビットで表現（0-15の指数: 0=空, 1=2, 2=4, 3=8, ..., 15=32768）
// 16個のタイル × 4ビット = 64ビット
// 置換表のキーとして使う
type BitBoard uint64

// NewBitBoard は通常のBoardからBitBoardを生成する
// 2の累乗でない値や32768を超える値を含む場合は ok=false
func NewBitBoard(b Board) (BitBoard, bool) {
	var bb BitBoard
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			val := b.cells[r][c]
			if val == 0 {
				continue
			}
			if val < 2 || val&(val-1) != 0 {
				return 0, false
			}
			// 2の何乗かを計算（2→1, 4→2, 8→3, ...）
			exp := bits.TrailingZeros(uint(val))
			if exp > 15 {
				return 0, false
			}
			bb.setTile(r, c, exp)
		}
	}
	return bb, true
}

// setTile は指定位置にタイル値（指数）を設定
func (bb *BitBoard) setTile(row, col, exp int) {
	shift := (row*4 + col) * 4
	mask := ^(BitBoard(0xF) << shift)
	*bb = (*bb & mask) | (BitBoard(exp) << shift)
}
