package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nnaakkaaii/expectimax2048/internal/app"
	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

const maxBodyBytes = 1 << 16

type gridRequest struct {
	Grid  *domain.Board `json:"grid"`
	Depth *int          `json:"depth,omitempty"`
}

type bestMoveResponse struct {
	Move   domain.Direction   `json:"move"`
	Scores []domain.MoveScore `json:"scores"`
	Depth  int                `json:"depth"`
	Nodes  int                `json:"nodes"`
}

type evaluateResponse struct {
	Score    float64            `json:"score"`
	Moves    []domain.Direction `json:"moves"`
	GameOver bool               `json:"game_over"`
}

type createGameRequest struct {
	Seed  *int64        `json:"seed,omitempty"`
	Grid  *domain.Board `json:"grid,omitempty"`
	Score int           `json:"score,omitempty"`
}

type moveRequest struct {
	Direction *domain.Direction `json:"direction"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) bestMove(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Grid == nil {
		writeError(w, r, badRequest("grid is required"))
		return
	}

	solver := h.solver
	if req.Depth != nil {
		if *req.Depth < 0 || *req.Depth > MaxRequestDepth {
			writeError(w, r, badRequest(fmt.Sprintf("depth must be between 0 and %d", MaxRequestDepth)))
			return
		}
		cfg := h.cfg
		cfg.MaxDepth = *req.Depth
		solver = cfg.NewSolver()
	}

	a := solver.Analyze(*req.Grid)
	zerolog.Ctx(r.Context()).Debug().
		Stringer("move", a.Best).
		Int("nodes", a.Nodes).
		Msg("best move")

	writeJSON(w, http.StatusOK, bestMoveResponse{
		Move:   a.Best,
		Scores: a.Moves[:],
		Depth:  solver.MaxDepth(),
		Nodes:  a.Nodes,
	})
}

func (h *handlers) evaluate(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Grid == nil {
		writeError(w, r, badRequest("grid is required"))
		return
	}

	ev := domain.NewHeuristicEvaluator(h.cfg.Weights)
	moves := domain.PossibleMoves(*req.Grid)
	writeJSON(w, http.StatusOK, evaluateResponse{
		Score:    ev.Evaluate(*req.Grid),
		Moves:    moves,
		GameOver: len(moves) == 0,
	})
}

func (h *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	seed := h.seed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	var snap app.Snapshot
	if req.Grid != nil {
		snap = h.svc.CreateGameFromBoard(*req.Grid, req.Score, seed)
	} else {
		snap = h.svc.CreateGame(seed)
	}
	w.Header().Set("Location", "/v1/games/"+snap.ID)
	writeJSON(w, http.StatusCreated, snap)
}

func (h *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Direction == nil {
		writeError(w, r, badRequest("direction is required"))
		return
	}

	snap, err := h.svc.Move(chi.URLParam(r, "id"), *req.Direction)
	if errors.Is(err, app.ErrNoMove) {
		writeJSON(w, http.StatusConflict, snap)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var gridErr *domain.InvalidGridError
		if errors.As(err, &gridErr) {
			return gridErr
		}
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		gridErr *domain.InvalidGridError
		reqErr  *requestError
		status  int
	)
	switch {
	case errors.As(err, &gridErr), errors.As(err, &reqErr):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrNoMove):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
