package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

// Planner は盤面から次の手を決める
type Planner interface {
	Analyze(board domain.Board) domain.Analysis
}

// tickMsg は自動プレイの1手分のタイマー
// gen が現在の世代と違うものは無視する
type tickMsg struct {
	gen int
}

// Model はbubbleteaで2048を遊ぶための状態
type Model struct {
	game     *domain.Game
	planner  Planner
	delay    time.Duration
	hint     *domain.Analysis
	auto     bool
	gen      int
	message  string
	quitting bool
}

// New はModelを生成する
func New(game *domain.Game, planner Planner, delay time.Duration) Model {
	return Model{
		game:    game,
		planner: planner,
		delay:   delay,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "h":
			a := m.planner.Analyze(m.game.Board())
			m.hint = &a
			m.message = ""
			return m, nil
		case " ", "space":
			m.auto = !m.auto
			// 切り替えるたびに世代を進め、飛行中のtickを無効にする
			m.gen++
			if m.auto {
				return m, m.tick()
			}
			return m, nil
		}
		if dir, ok := keyDirection(msg.String()); ok {
			m.move(dir)
		}
		return m, nil
	case tickMsg:
		if !m.auto || msg.gen != m.gen {
			return m, nil
		}
		if m.game.IsGameOver() {
			m.auto = false
			return m, nil
		}
		m.move(m.planner.Analyze(m.game.Board()).Best)
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) move(dir domain.Direction) {
	m.hint = nil
	if m.game.Move(dir) {
		m.message = ""
		return
	}
	m.message = fmt.Sprintf("Cannot move %s.", dir)
}

func keyDirection(key string) (domain.Direction, bool) {
	switch key {
	case "up", "w":
		return domain.Up, true
	case "down", "s":
		return domain.Down, true
	case "left", "a":
		return domain.Left, true
	case "right", "d":
		return domain.Right, true
	}
	return 0, false
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("=== 2048 ===\n")
	sb.WriteString(m.game.Board().String())
	fmt.Fprintf(&sb, "Score: %d  Moves: %d\n", m.game.Score(), m.game.Moves())

	if m.hint != nil {
		fmt.Fprintf(&sb, "Hint: %s\n", m.hint.Best)
		for _, ms := range m.hint.Moves {
			if ms.Valid {
				fmt.Fprintf(&sb, "  %-5s %.2f\n", ms.Direction, ms.Score)
			}
		}
	}
	if m.message != "" {
		sb.WriteString(m.message + "\n")
	}
	if m.game.IsGameOver() {
		sb.WriteString("Game Over!\n")
	}
	if m.auto {
		sb.WriteString("[autoplay]\n")
	}
	sb.WriteString("\narrows/wasd: move  h: hint  space: autoplay  q: quit\n")
	return sb.String()
}
