package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

// 環境変数名
const (
	EnvDepth    = "EXPECTIMAX_DEPTH"
	EnvLogLevel = "EXPECTIMAX_LOG_LEVEL"
	EnvAddr     = "EXPECTIMAX_ADDR"
)

// Config は探索と各コマンドの設定
type Config struct {
	// MaxDepth は最上位のChanceノードから数えた探索深さ
	MaxDepth int
	Weights  domain.Weights
	// Cache は探索中に置換表を使うか
	Cache bool

	// Delay は1手ごとの待ち時間（アニメーション待ち）
	Delay time.Duration
	// MaxMoves は自動プレイの上限手数（0なら無制限）
	MaxMoves int

	Addr     string
	LogLevel string
	Pretty   bool
}

// Default はデフォルトの設定を返す
func Default() Config {
	return Config{
		MaxDepth: 3,
		Weights:  domain.DefaultWeights(),
		Cache:    true,
		Delay:    150 * time.Millisecond,
		Addr:     ":8048",
		LogLevel: "info",
		Pretty:   true,
	}
}

// Validate は設定値の範囲を検証する
func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max depth must be >= 0, got %d", c.MaxDepth))
	}
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must be >= 0, got %s", c.Delay))
	}
	if c.MaxMoves < 0 {
		errs = append(errs, fmt.Errorf("max moves must be >= 0, got %d", c.MaxMoves))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

// RegisterFlags はフラグを登録する（現在の値がデフォルトになる）
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.MaxDepth, "depth", c.MaxDepth, "search depth")
	fs.BoolVar(&c.Cache, "cache", c.Cache, "use a transposition table during search")
	fs.Float64Var(&c.Weights.Empty, "w-empty", c.Weights.Empty, "weight of empty cells")
	fs.Float64Var(&c.Weights.Monotonicity, "w-mono", c.Weights.Monotonicity, "weight of row monotonicity")
	fs.Float64Var(&c.Weights.Smoothness, "w-smooth", c.Weights.Smoothness, "weight of smoothness")
	fs.Float64Var(&c.Weights.MaxPosition, "w-corner", c.Weights.MaxPosition, "weight of max tile in a corner")
	fs.DurationVar(&c.Delay, "delay", c.Delay, "delay between moves")
	fs.IntVar(&c.MaxMoves, "max-moves", c.MaxMoves, "stop after this many moves (0 = until game over)")
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&c.Pretty, "pretty", c.Pretty, "human readable console logs")
}

// ApplyEnv は環境変数で設定を上書きする
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvDepth); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDepth, err)
		}
		c.MaxDepth = depth
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	return nil
}

// NewSolver は設定に従ってSolverを生成する
func (c Config) NewSolver() *domain.Solver {
	return domain.NewSolver(domain.NewHeuristicEvaluator(c.Weights), c.MaxDepth, domain.WithCache(c.Cache))
}

// Load はフラグを登録してargsを解析し、環境変数を反映して検証する
// 呼び出し側の追加フラグは事前にfsへ登録しておく
func Load(fs *flag.FlagSet, args []string, getenv func(string) string) (Config, error) {
	c := Default()
	c.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := c.ApplyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
