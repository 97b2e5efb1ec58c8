package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nnaakkaaii/expectimax2048/internal/app"
	"github.com/nnaakkaaii/expectimax2048/internal/config"
	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	cfg := config.Default()
	cfg.MaxDepth = 1
	svc := app.NewService()
	return svc, NewServer(svc, cfg, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	rr := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestBestMove(t *testing.T) {
	_, h := newTestServer(t)
	rr := do(t, h, http.MethodPost, "/v1/best-move", `{"grid":[[2,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp bestMoveResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Contains(t, []domain.Direction{domain.Right, domain.Down}, resp.Move)
	require.Len(t, resp.Scores, 4)
	require.False(t, resp.Scores[domain.Left].Valid)
	require.False(t, resp.Scores[domain.Up].Valid)
	require.Equal(t, 1, resp.Depth)
	require.Positive(t, resp.Nodes)
}

func TestBestMoveFlatGridAndDepth(t *testing.T) {
	_, h := newTestServer(t)
	rr := do(t, h, http.MethodPost, "/v1/best-move", `{"grid":[2,4,2,4,4,2,4,2,2,4,2,4,4,2,4,2],"depth":0}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp bestMoveResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	// 動ける手がない場合はLeft
	require.Equal(t, domain.Left, resp.Move)
	require.Equal(t, 0, resp.Depth)
}

func TestBestMoveRejectsInvalidInput(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"three rows", `{"grid":[[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`},
		{"negative", `{"grid":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,-2]]}`},
		{"missing grid", `{}`},
		{"depth too large", `{"grid":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,2]],"depth":9}`},
		{"not json", `grid`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/v1/best-move", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestEvaluate(t *testing.T) {
	_, h := newTestServer(t)
	rr := do(t, h, http.MethodPost, "/v1/evaluate", `{"grid":[[2,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.InDelta(t, 272.6, resp.Score, 1e-9)
	require.Equal(t, []domain.Direction{domain.Right, domain.Down}, resp.Moves)
	require.False(t, resp.GameOver)
}

func TestGameLifecycle(t *testing.T) {
	_, h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/v1/games", `{"seed":1,"grid":[[2,2,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created app.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "/v1/games/"+created.ID, rr.Header().Get("Location"))

	rr = do(t, h, http.MethodGet, "/v1/games/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/games/"+created.ID+"/moves", `{"direction":"left"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var moved app.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &moved))
	require.Equal(t, 4, moved.Score)
	require.Equal(t, 1, moved.Moves)

	rr = do(t, h, http.MethodPost, "/v1/games/"+created.ID+"/moves", `{"direction":"sideways"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/games/"+created.ID+"/moves", `{}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodDelete, "/v1/games/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/v1/games/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMoveConflict(t *testing.T) {
	svc, h := newTestServer(t)
	snap := svc.CreateGameFromBoard(domain.NewBoardFromCells([4][4]int{{2, 0, 0, 0}}), 0, 1)

	rr := do(t, h, http.MethodPost, "/v1/games/"+snap.ID+"/moves", `{"direction":"up"}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/games/missing/moves", `{"direction":"up"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateGameWithoutBody(t *testing.T) {
	_, h := newTestServer(t)
	rr := do(t, h, http.MethodPost, "/v1/games", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var snap app.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	require.Len(t, snap.Grid.EmptyCells(), 14)
}

func TestWatch(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	snap := svc.CreateGameFromBoard(domain.NewBoardFromCells([4][4]int{{2, 2, 0, 0}}), 0, 1)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/games/" + snap.ID + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first app.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	require.True(t, first.Grid.Equal(snap.Grid))

	_, err = svc.Move(snap.ID, domain.Left)
	require.NoError(t, err)

	var update app.Snapshot
	require.NoError(t, conn.ReadJSON(&update))
	require.Equal(t, 4, update.Score)

	require.NoError(t, svc.Delete(snap.ID))
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error %v", err)
}

func TestWatchUnknownGame(t *testing.T) {
	_, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/games/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
