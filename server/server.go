// Package server exposes the teleport commands over HTTP and streams
// player notifications over a websocket.
package server

import (
	"log/slog"
	"net/http"
	"tpa-lab/auth"
	"tpa-lab/contract"
	"tpa-lab/domain"
	"tpa-lab/projection"
	"tpa-lab/repositories"
	"tpa-lab/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// PlayerWorld is the part of the world a remote player drives directly.
type PlayerWorld interface {
	Join(state domain.ActorState) domain.ActorState
	Leave(id domain.ActorID) bool
	Move(id domain.ActorID, position domain.Vec3, orientation domain.Orientation) (domain.ActorState, error)
	LiveState(id domain.ActorID) (domain.ActorState, bool)
}

type SessionRegistry interface {
	Subscribe(id domain.ActorID, sink contract.NotificationSink)
	Unsubscribe(id domain.ActorID, sink contract.NotificationSink)
}

type History interface {
	ForActor(id domain.ActorID) []projection.Entry
}

type Config struct {
	PermissionsEnabled   bool
	ConnectionBufferSize int
}

type Server struct {
	log       *slog.Logger
	cfg       Config
	service   services.ITeleportService
	world     PlayerWorld
	sessions  SessionRegistry
	history   History
	positions repositories.IPositionRepository
	issuer    *auth.TokenIssuer
	upgrader  websocket.Upgrader
}

func NewServer(
	log *slog.Logger,
	cfg Config,
	service services.ITeleportService,
	world PlayerWorld,
	sessions SessionRegistry,
	history History,
	positions repositories.IPositionRepository,
	issuer *auth.TokenIssuer,
) *Server {
	if cfg.ConnectionBufferSize <= 0 {
		cfg.ConnectionBufferSize = 32
	}
	return &Server{
		log:       log,
		cfg:       cfg,
		service:   service,
		world:     world,
		sessions:  sessions,
		history:   history,
		positions: positions,
		issuer:    issuer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok") })

	r.Route("/v1", func(r chi.Router) {
		r.Post("/session", s.openSession)
		r.Get("/map/snapshot", s.mapSnapshot)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.issuer))
			r.Delete("/session", s.closeSession)
			r.Post("/players/me/move", s.move)
			r.Get("/ws", s.notifications)

			r.Route("/tpa", func(r chi.Router) {
				r.With(s.require(auth.PermRequest)).Post("/", s.submit)
				r.With(s.require(auth.PermRequest)).Get("/status", s.status)
				r.With(s.require(auth.PermAccept)).Post("/accept", s.accept)
				r.With(s.require(auth.PermDeny)).Post("/deny", s.deny)
				r.With(s.require(auth.PermCancel)).Post("/cancel", s.cancel)
				r.Get("/history", s.historyForPlayer)
			})
		})
	})
	return r
}

func (s *Server) require(permission string) func(http.Handler) http.Handler {
	return auth.RequirePermission(s.cfg.PermissionsEnabled, permission)
}
