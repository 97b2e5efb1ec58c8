package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

// State はリモートのゲームが返す状態
// grid は16要素の一次元配列か4x4の二次元配列
type State struct {
	ID       string       `json:"id"`
	Grid     domain.Board `json:"grid"`
	Score    int          `json:"score"`
	GameOver bool         `json:"game_over"`
}

// StatusError は想定外のHTTPステータス
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client はHTTP API上のゲームを StateProvider / MoveDispatcher として扱う
type Client struct {
	baseURL string
	gameID  string
	http    *http.Client
}

// Option はClientの設定を変更する
type Option func(*Client)

// WithHTTPClient は使用するhttp.Clientを差し替える
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient は既存のゲームに接続するClientを生成する
func NewClient(baseURL, gameID string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		gameID:  gameID,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateGame はサーバー上に新しいゲームを作り、そのゲームに接続するClientを返す
func CreateGame(ctx context.Context, baseURL string, seed *int64, opts ...Option) (*Client, error) {
	c := NewClient(baseURL, "", opts...)
	body := map[string]any{}
	if seed != nil {
		body["seed"] = *seed
	}
	var st State
	if err := c.do(ctx, http.MethodPost, "/v1/games", body, &st, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	c.gameID = st.ID
	return c, nil
}

// GameID は接続中のゲームIDを返す
func (c *Client) GameID() string {
	return c.gameID
}

// State はゲームの状態を取得する
func (c *Client) State(ctx context.Context) (State, error) {
	var st State
	if err := c.do(ctx, http.MethodGet, c.gamePath(), nil, &st, http.StatusOK); err != nil {
		return State{}, err
	}
	return st, nil
}

func (c *Client) Grid(ctx context.Context) (domain.Board, error) {
	st, err := c.State(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	return st.Grid, nil
}

func (c *Client) Score(ctx context.Context) (int, error) {
	st, err := c.State(ctx)
	if err != nil {
		return 0, err
	}
	return st.Score, nil
}

// ApplyMove は手を送る。盤面が変化しない手（409）はエラーにしない
func (c *Client) ApplyMove(ctx context.Context, dir domain.Direction) error {
	body := map[string]domain.Direction{"direction": dir}
	err := c.do(ctx, http.MethodPost, c.gamePath()+"/moves", body, nil, http.StatusOK)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusConflict {
		return nil
	}
	return err
}

func (c *Client) gamePath() string {
	return "/v1/games/" + url.PathEscape(c.gameID)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, want int) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
