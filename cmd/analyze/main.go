package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nnaakkaaii/expectimax2048/internal/config"
	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Println("=== 2048 Expectimax Analyzer ===")
	fmt.Println("Enter board state as 16 numbers (0 for empty), or 'quit' to exit")
	fmt.Println("Example: 0 0 0 0 0 0 0 0 0 0 0 0 0 0 2 2")
	fmt.Println()

	if err := run(bufio.NewScanner(os.Stdin), os.Stdout, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(scanner *bufio.Scanner, w io.Writer, cfg config.Config) error {
	for {
		board, ok := inputBoard(scanner, w)
		if !ok {
			return scanner.Err()
		}

		for {
			fmt.Fprintln(w, "\nCurrent board:")
			fmt.Fprint(w, board)

			if board.IsGameOver() {
				fmt.Fprintln(w, "Game Over!")
				break
			}

			a := cfg.NewSolver().Analyze(board)
			printAnalysis(w, a, cfg.MaxDepth)

			fmt.Fprintln(w, "\nOptions:")
			fmt.Fprintln(w, "  1. Apply suggested move and add new tile")
			fmt.Fprintln(w, "  2. Enter custom move and new tile")
			fmt.Fprintln(w, "  3. Change search depth")
			fmt.Fprintln(w, "  4. New board")
			fmt.Fprintln(w, "  5. Quit")
			fmt.Fprint(w, "Choice: ")

			if !scanner.Scan() {
				return scanner.Err()
			}
			choice := strings.TrimSpace(scanner.Text())

			switch choice {
			case "1":
				board = applyMoveWithNewTile(scanner, w, board, a.Best)
			case "2":
				board = customMoveWithNewTile(scanner, w, board)
			case "3":
				cfg.MaxDepth = changeDepth(scanner, w, cfg.MaxDepth)
			case "4":
			case "5":
				return nil
			default:
				fmt.Fprintln(w, "Invalid choice")
			}

			if choice == "4" {
				break
			}
		}
	}
}

func inputBoard(scanner *bufio.Scanner, w io.Writer) (domain.Board, bool) {
	for {
		fmt.Fprintln(w, "Enter board (16 numbers separated by spaces, or 'quit'):")
		if !scanner.Scan() {
			return domain.Board{}, false
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "quit" {
			return domain.Board{}, false
		}

		board, err := parseBoard(input)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		return board, true
	}
}

// parseBoard は空白区切りの16個の数値を行優先で盤面に変換する
func parseBoard(input string) (domain.Board, error) {
	parts := strings.Fields(input)
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return domain.Board{}, &domain.InvalidGridError{Reason: fmt.Sprintf("cell %q is not a number", p), Row: -1, Col: -1, Err: err}
		}
		values = append(values, v)
	}
	return domain.NewBoardFromFlat(values)
}

func printAnalysis(w io.Writer, a domain.Analysis, depth int) {
	fmt.Fprintf(w, "\nSearch depth: %d (nodes: %d, cache hits: %d)\n", depth, a.Nodes, a.CacheHits)

	valid := false
	for _, m := range a.Moves {
		valid = valid || m.Valid
	}
	if !valid {
		fmt.Fprintln(w, "No valid moves available! (default: Left)")
		return
	}

	fmt.Fprintf(w, "\n=== Recommended move: %s ===\n", a.Best)
	fmt.Fprintln(w, "\nMove scores:")
	for _, m := range a.Moves {
		if !m.Valid {
			continue
		}
		fmt.Fprintf(w, "  %-5s: %.2f", m.Direction, m.Score)
		if m.Direction == a.Best {
			fmt.Fprint(w, " <- BEST")
		}
		fmt.Fprintln(w)
	}
}

func applyMoveWithNewTile(scanner *bufio.Scanner, w io.Writer, board domain.Board, dir domain.Direction) domain.Board {
	if !domain.IsMoveValid(board, dir) {
		fmt.Fprintf(w, "Cannot move %s.\n", dir)
		return board
	}
	newBoard, score := board.Move(dir)
	fmt.Fprintf(w, "\nApplied %s (score gained: +%d)\n", dir, score)
	fmt.Fprint(w, newBoard)

	fmt.Fprintln(w, "\nEmpty cells:")
	for i, cell := range newBoard.EmptyCells() {
		fmt.Fprintf(w, "  %d: (%d,%d)\n", i, cell[0], cell[1])
	}

	fmt.Fprint(w, "\nEnter new tile position (row col) and value (2 or 4): ")
	if !scanner.Scan() {
		return newBoard
	}
	row, col, val, err := parseTile(scanner.Text(), newBoard)
	if err != nil {
		fmt.Fprintln(w, err)
		return board
	}
	return newBoard.Set(row, col, val)
}

var errTileFormat = errors.New("invalid input. Format: row col value")

func parseTile(input string, board domain.Board) (row, col, val int, err error) {
	parts := strings.Fields(input)
	if len(parts) != 3 {
		return 0, 0, 0, errTileFormat
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if nums[i], err = strconv.Atoi(p); err != nil {
			return 0, 0, 0, errTileFormat
		}
	}
	row, col, val = nums[0], nums[1], nums[2]
	if row < 0 || row > 3 || col < 0 || col > 3 {
		return 0, 0, 0, errors.New("invalid position")
	}
	if board.Get(row, col) != 0 {
		return 0, 0, 0, errors.New("cell is not empty")
	}
	if val != 2 && val != 4 {
		return 0, 0, 0, errors.New("value must be 2 or 4")
	}
	return row, col, val, nil
}

func customMoveWithNewTile(scanner *bufio.Scanner, w io.Writer, board domain.Board) domain.Board {
	fmt.Fprint(w, "Enter direction (u/d/l/r): ")
	if !scanner.Scan() {
		return board
	}
	dir, ok := domain.ParseDirection(strings.TrimSpace(scanner.Text()))
	if !ok {
		fmt.Fprintln(w, "Invalid direction")
		return board
	}
	return applyMoveWithNewTile(scanner, w, board, dir)
}

func changeDepth(scanner *bufio.Scanner, w io.Writer, currentDepth int) int {
	fmt.Fprintf(w, "Enter new depth (current: %d): ", currentDepth)
	if !scanner.Scan() {
		return currentDepth
	}
	newDepth, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || newDepth < 0 || newDepth > 6 {
		fmt.Fprintln(w, "Invalid depth (must be 0-6)")
		return currentDepth
	}
	return newDepth
}
