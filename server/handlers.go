package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"tpa-lab/auth"
	"tpa-lab/domain"
	"tpa-lab/errors"
	"tpa-lab/projection"
)

type sessionResponse struct {
	PlayerID domain.ActorID `json:"player_id"`
	Token    string         `json:"token"`
}

type requestView struct {
	ID            string         `json:"id"`
	Kind          string         `json:"kind"`
	RequesterID   domain.ActorID `json:"requester_id"`
	RequesterName string         `json:"requester_name"`
	TargetID      domain.ActorID `json:"target_id"`
	TargetName    string         `json:"target_name"`
	ExpiresAt     time.Time      `json:"expires_at"`
}

type submitResponse struct {
	Request  requestView  `json:"request"`
	Replaced *requestView `json:"replaced,omitempty"`
}

type acceptResponse struct {
	Request      requestView    `json:"request"`
	Mover        domain.ActorID `json:"mover"`
	Anchor       domain.ActorID `json:"anchor"`
	DelaySeconds int            `json:"delay_seconds"`
}

type cancelResponse struct {
	Scope   string      `json:"scope"`
	Request requestView `json:"request"`
}

type statusResponse struct {
	Lines             []string `json:"lines"`
	TeleportInFlight  bool     `json:"teleport_in_flight"`
	CooldownRemaining int      `json:"cooldown_remaining"`
}

type positionResponse struct {
	PlayerID domain.ActorID     `json:"player_id"`
	Position domain.Vec3        `json:"position"`
	Facing   domain.Orientation `json:"orientation"`
}

func toView(r domain.Request) requestView {
	return requestView{
		ID:            r.ID.String(),
		Kind:          r.Kind.String(),
		RequesterID:   r.RequesterID,
		RequesterName: r.RequesterName,
		TargetID:      r.TargetID,
		TargetName:    r.TargetName,
		ExpiresAt:     r.CreatedAt.Add(r.Timeout).UTC(),
	}
}

func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
}

func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var body auth.SessionRequest
	if err := decode(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := auth.ValidateSession(body); err != nil {
		writeDomainError(w, err)
		return
	}
	actor := s.world.Join(domain.ActorState{
		DisplayName:   body.DisplayName,
		CharacterName: body.CharacterName,
		GroupName:     body.GroupName,
		Position:      domain.Vec3{X: body.X, Y: body.Y, Z: body.Z},
		Orientation:   domain.Orientation{Yaw: body.Yaw},
	})
	token, err := s.issuer.GenerateToken(actor.ID, auth.DefaultPermissions())
	if err != nil {
		s.world.Leave(actor.ID)
		s.log.Error("Unable to sign session token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	s.log.Debug("Session opened", "player_id", actor.ID)
	writeSuccess(w, http.StatusCreated, sessionResponse{PlayerID: actor.ID, Token: token})
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	if !s.world.Leave(id) {
		writeDomainError(w, errors.ErrPlayerNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	var body auth.MoveRequest
	if err := decode(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := auth.ValidateMove(body); err != nil {
		writeDomainError(w, err)
		return
	}
	actor, err := s.world.Move(id, domain.Vec3{X: body.X, Y: body.Y, Z: body.Z},
		domain.Orientation{Yaw: body.Yaw, Pitch: body.Pitch})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, positionResponse{PlayerID: actor.ID, Position: actor.Position, Facing: actor.Orientation})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	var body auth.TpaRequest
	if err := decode(r, &body); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := auth.ValidateTpa(body); err != nil {
		writeDomainError(w, err)
		return
	}
	kind, _ := domain.ParseKind(body.Kind)
	outcome, err := s.service.SubmitRequest(r.Context(), id, body.Query, kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := submitResponse{Request: toView(outcome.Request)}
	if outcome.Replaced != nil {
		replaced := toView(*outcome.Replaced)
		resp.Replaced = &replaced
	}
	writeSuccess(w, http.StatusCreated, resp)
}

func (s *Server) accept(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	outcome, err := s.service.AcceptPending(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusAccepted, acceptResponse{
		Request:      toView(outcome.Request),
		Mover:        outcome.Mover,
		Anchor:       outcome.Anchor,
		DelaySeconds: domain.CeilSeconds(outcome.Delay),
	})
}

func (s *Server) deny(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	outcome, err := s.service.DenyPending(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toView(outcome.Request))
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	outcome, err := s.service.CancelOutgoing(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	scope := "pending"
	if outcome.Scope == domain.CancelInFlight {
		scope = "in_flight"
	}
	writeSuccess(w, http.StatusOK, cancelResponse{Scope: scope, Request: toView(outcome.Request)})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	outcome, err := s.service.QueryStatus(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, statusResponse{
		Lines:             statusLines(outcome),
		TeleportInFlight:  outcome.TeleportInFlight,
		CooldownRemaining: outcome.CooldownRemaining,
	})
}

func (s *Server) historyForPlayer(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	entries := s.history.ForActor(id)
	if entries == nil {
		entries = []projection.Entry{}
	}
	writeSuccess(w, http.StatusOK, entries)
}

func (s *Server) mapSnapshot(w http.ResponseWriter, _ *http.Request) {
	meta, players, err := s.positions.Snapshot()
	if err != nil {
		s.log.Error("Unable to read position snapshot", "error", err)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "position store unavailable")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"metadata": meta, "players": players})
}
