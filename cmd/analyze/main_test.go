package main

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nnaakkaaii/expectimax2048/internal/config"
	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

func TestParseBoard(t *testing.T) {
	b, err := parseBoard("0 0 0 0  0 0 0 0  0 0 0 0  0 0 2 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Get(3, 2) != 2 || b.Get(3, 3) != 2 {
		t.Errorf("unexpected board:\n%s", b)
	}

	for _, in := range []string{"0 0 2", "0 0 0 0 0 0 0 0 0 0 0 0 0 0 2 x", "0 0 0 0 0 0 0 0 0 0 0 0 0 0 2 -2"} {
		_, err := parseBoard(in)
		var gridErr *domain.InvalidGridError
		if !errors.As(err, &gridErr) {
			t.Errorf("parseBoard(%q) error = %v, want InvalidGridError", in, err)
		}
	}
}

func TestRunPrintsRecommendation(t *testing.T) {
	in := strings.Join([]string{
		"1 2 3",
		"2 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
		"5",
	}, "\n")
	var out bytes.Buffer

	if err := run(bufio.NewScanner(strings.NewReader(in)), &out, config.Default()); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Error: invalid grid") {
		t.Errorf("expected the malformed board to be rejected:\n%s", got)
	}
	if !strings.Contains(got, "Recommended move:") {
		t.Errorf("expected a recommendation:\n%s", got)
	}
	if strings.Contains(got, "left :") || strings.Contains(got, "up   :") {
		t.Errorf("invalid moves should not be scored:\n%s", got)
	}
}

func TestParseTile(t *testing.T) {
	board := domain.NewBoardFromCells([4][4]int{{2, 0, 0, 0}})

	if _, _, _, err := parseTile("0 1 4", board); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, in := range []string{"0 0 2", "0 1 8", "4 0 2", "a b c", "0 1"} {
		if _, _, _, err := parseTile(in, board); err == nil {
			t.Errorf("parseTile(%q) should fail", in)
		}
	}
}
