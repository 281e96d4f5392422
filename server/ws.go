package server

import (
	"context"
	"net/http"
	"time"
	"tpa-lab/auth"
	"tpa-lab/sink"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	pongWait  = 60 * time.Second
)

// notifications streams every text addressed to the player as JSON frames.
// The stream ends when the client goes away. The player stays in the world
// until the session is closed.
func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.PlayerFromContext(r.Context())
	if _, online := s.world.LiveState(id); !online {
		writeError(w, http.StatusNotFound, "player_not_found", "Player not found.")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "player_id", id, "error", err)
		return
	}
	defer conn.Close()

	playerSink := sink.NewPlayerSink(s.cfg.ConnectionBufferSize)
	s.sessions.Subscribe(id, playerSink)
	defer func() {
		s.sessions.Unsubscribe(id, playerSink)
		playerSink.Close()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader loop only watches for the client closing the stream.
	go func() {
		defer cancel()
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pongWait / 2)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case n, ok := <-playerSink.Notifications():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(n); err != nil {
				s.log.Debug("Notification stream closed", "player_id", id, "error", err)
				return
			}
		}
	}
}
