package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nnaakkaaii/expectimax2048/internal/app"
	"github.com/nnaakkaaii/expectimax2048/internal/config"
	"github.com/nnaakkaaii/expectimax2048/internal/domain"
)

// MaxRequestDepth はリクエストで指定できる探索深さの上限
const MaxRequestDepth = 5

type handlers struct {
	svc      *app.Service
	cfg      config.Config
	solver   *domain.Solver
	log      zerolog.Logger
	upgrader websocket.Upgrader
	seed     func() int64
}

// NewServer はルーティングを組み立てて http.Handler を返す
func NewServer(svc *app.Service, cfg config.Config, log zerolog.Logger) http.Handler {
	h := &handlers{
		svc:    svc,
		cfg:    cfg,
		solver: cfg.NewSolver(),
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		seed: func() int64 { return time.Now().UnixNano() },
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/best-move", h.bestMove)
		r.Post("/evaluate", h.evaluate)
		r.Post("/games", h.createGame)
		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", h.getGame)
			r.Delete("/", h.deleteGame)
			r.Post("/moves", h.move)
			r.Get("/ws", h.watch)
		})
	})
	return r
}
