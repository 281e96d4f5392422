package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"tpa-lab/auth"
	"tpa-lab/domain"
	"tpa-lab/domain/event"
	"tpa-lab/errors"
	"tpa-lab/mocks"
	"tpa-lab/projection"
	"tpa-lab/repositories"
	"tpa-lab/runtime"
	"tpa-lab/world"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	server    *httptest.Server
	service   *mocks.MockITeleportService
	positions *mocks.MockIPositionRepository
	world     *world.World
	sessions  *runtime.Sessions
	timeline  *projection.Timeline
	issuer    *auth.TokenIssuer
}

func newFixture(t *testing.T, cfg Config) *fixture {
	ctrl := gomock.NewController(t)
	log := slog.New(slog.DiscardHandler)
	clock := runtime.SystemClock{}
	f := &fixture{
		service:   mocks.NewMockITeleportService(ctrl),
		positions: mocks.NewMockIPositionRepository(ctrl),
		world:     world.New(log, clock),
		sessions:  runtime.NewSessions(log, clock),
		timeline:  projection.NewTimeline(0),
		issuer:    auth.NewTokenIssuer("test-secret", time.Hour),
	}
	srv := NewServer(log, cfg, f.service, f.world, f.sessions, f.timeline, f.positions, f.issuer)
	f.server = httptest.NewServer(srv.Router())
	t.Cleanup(f.server.Close)
	return f
}

// join opens a session and returns the player id and token.
func (f *fixture) join(t *testing.T, name string) (domain.ActorID, string) {
	body := `{"display_name":"` + name + `"}`
	res, err := http.Post(f.server.URL+"/v1/session", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var payload struct {
		Data sessionResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	return payload.Data.PlayerID, payload.Data.Token
}

func (f *fixture) call(t *testing.T, method, path, token, body string) (int, map[string]any) {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	payload := map[string]any{}
	_ = json.NewDecoder(res.Body).Decode(&payload)
	return res.StatusCode, payload
}

func TestServer_Session(t *testing.T) {
	t.Run("joining spawns the player and leaving removes it", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, Config{})

		id, token := f.join(t, "Alice")
		_, online := f.world.LiveState(id)
		req.True(online)

		code, _ := f.call(t, http.MethodDelete, "/v1/session", token, "")
		req.Equal(http.StatusNoContent, code)
		_, online = f.world.LiveState(id)
		req.False(online)
	})

	t.Run("missing display name is rejected", func(t *testing.T) {
		f := newFixture(t, Config{})
		code, payload := f.call(t, http.MethodPost, "/v1/session", "", `{"display_name":""}`)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "invalid_request", payload["code"])
	})

	t.Run("protected routes need a token", func(t *testing.T) {
		f := newFixture(t, Config{})
		code, _ := f.call(t, http.MethodPost, "/v1/tpa/accept", "", "")
		require.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestServer_Move(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	id, token := f.join(t, "Alice")

	code, _ := f.call(t, http.MethodPost, "/v1/players/me/move", token, `{"x":4,"y":1,"z":-2,"yaw":90}`)

	req.Equal(http.StatusOK, code)
	alice, _ := f.world.LiveState(id)
	req.Equal(domain.Vec3{X: 4, Y: 1, Z: -2}, alice.Position)
	req.Equal(90.0, alice.Orientation.Yaw)
}

func TestServer_Commands(t *testing.T) {
	t.Run("submit forwards the query and kind", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, Config{})
		id, token := f.join(t, "Alice")
		request := domain.NewRequest(domain.ActorState{ID: id, DisplayName: "Alice"},
			domain.ActorState{ID: 99, DisplayName: "Bob"}, domain.KindSummon, time.Minute, time.Now())

		f.service.EXPECT().SubmitRequest(gomock.Any(), id, "bo", domain.KindSummon).
			Return(domain.SubmitOutcome{Request: request}, nil)

		code, payload := f.call(t, http.MethodPost, "/v1/tpa", token, `{"query":"bo","kind":"tpahere"}`)

		req.Equal(http.StatusCreated, code)
		data := payload["data"].(map[string]any)["request"].(map[string]any)
		req.Equal("Bob", data["target_name"])
		req.Equal("summon", data["kind"])
	})

	t.Run("lookup failures carry the player texts", func(t *testing.T) {
		f := newFixture(t, Config{})
		_, token := f.join(t, "Alice")

		cases := []struct {
			err     error
			code    int
			message string
		}{
			{errors.PlayerNotFoundError{}, http.StatusBadRequest, "You must specify a player name."},
			{errors.PlayerNotFoundError{Query: "zed"}, http.StatusNotFound, "No players matched 'zed'."},
			{errors.AmbiguousMatchError{Preview: []string{"Bob", "Bobby"}, Truncated: true}, http.StatusConflict, "Multiple matches: Bob, Bobby..."},
			{errors.ErrSelfTargetNotAllowed, http.StatusBadRequest, "You cannot send a TPA to yourself."},
			{errors.CooldownError{Remaining: 7}, http.StatusTooManyRequests, "Cooldown: 7s"},
		}
		for _, c := range cases {
			f.service.EXPECT().SubmitRequest(gomock.Any(), gomock.Any(), gomock.Any(), domain.KindToTarget).Return(domain.SubmitOutcome{}, c.err)

			code, payload := f.call(t, http.MethodPost, "/v1/tpa", token, `{"query":"x"}`)

			require.Equal(t, c.code, code)
			require.Equal(t, c.message, payload["message"])
		}
	})

	t.Run("accept reports the countdown", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, Config{})
		id, token := f.join(t, "Bob")
		f.service.EXPECT().AcceptPending(gomock.Any(), id).Return(domain.AcceptOutcome{
			Mover: 1, Anchor: id, Delay: 3 * time.Second,
		}, nil)

		code, payload := f.call(t, http.MethodPost, "/v1/tpa/accept", token, "")

		req.Equal(http.StatusAccepted, code)
		req.Equal(3.0, payload["data"].(map[string]any)["delay_seconds"])
	})

	t.Run("nothing to accept, deny or cancel", func(t *testing.T) {
		req := require.New(t)
		f := newFixture(t, Config{})
		_, token := f.join(t, "Bob")
		f.service.EXPECT().AcceptPending(gomock.Any(), gomock.Any()).Return(domain.AcceptOutcome{}, errors.ErrNoPendingRequest)
		f.service.EXPECT().DenyPending(gomock.Any(), gomock.Any()).Return(domain.DenyOutcome{}, errors.ErrNoPendingRequest)
		f.service.EXPECT().CancelOutgoing(gomock.Any(), gomock.Any()).Return(domain.CancelOutcome{}, errors.ErrNoOutgoingRequest)

		_, accept := f.call(t, http.MethodPost, "/v1/tpa/accept", token, "")
		_, deny := f.call(t, http.MethodPost, "/v1/tpa/deny", token, "")
		code, cancel := f.call(t, http.MethodPost, "/v1/tpa/cancel", token, "")

		req.Equal("No pending TPA.", accept["message"])
		req.Equal("No pending TPA.", deny["message"])
		req.Equal(http.StatusNotFound, code)
		req.Equal("You have no outgoing TPA request.", cancel["message"])
	})

	t.Run("requester offline at accept", func(t *testing.T) {
		f := newFixture(t, Config{})
		_, token := f.join(t, "Bob")
		f.service.EXPECT().AcceptPending(gomock.Any(), gomock.Any()).Return(domain.AcceptOutcome{}, errors.ErrRequesterOffline)

		code, payload := f.call(t, http.MethodPost, "/v1/tpa/accept", token, "")

		require.Equal(t, http.StatusConflict, code)
		require.Equal(t, "Requester offline.", payload["message"])
	})

	t.Run("cancel of an accepted teleport", func(t *testing.T) {
		f := newFixture(t, Config{})
		_, token := f.join(t, "Alice")
		f.service.EXPECT().CancelOutgoing(gomock.Any(), gomock.Any()).Return(domain.CancelOutcome{Scope: domain.CancelInFlight}, nil)

		code, payload := f.call(t, http.MethodPost, "/v1/tpa/cancel", token, "")

		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "in_flight", payload["data"].(map[string]any)["scope"])
	})
}

func TestServer_Status(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	_, token := f.join(t, "Alice")
	f.service.EXPECT().QueryStatus(gomock.Any(), gomock.Any()).Return(domain.StatusOutcome{
		Outgoing:          &domain.PendingView{CounterpartName: "Bob", CounterpartOnline: false, SecondsRemaining: 42},
		OnCooldown:        true,
		CooldownRemaining: 5,
	}, nil)

	code, payload := f.call(t, http.MethodGet, "/v1/tpa/status", token, "")

	req.Equal(http.StatusOK, code)
	lines := payload["data"].(map[string]any)["lines"].([]any)
	req.Equal("Pending request to (offline player). 42s remaining. Use /tpcancel to cancel.", lines[0])
	req.Equal("Cooldown remaining: 5s", lines[1])
}

func TestStatusLines_Without_Outgoing(t *testing.T) {
	lines := statusLines(domain.StatusOutcome{
		Incoming:         &domain.PendingView{CounterpartName: "Carol", CounterpartOnline: true, SecondsRemaining: 10},
		TeleportInFlight: true,
	})

	require.Equal(t, []string{
		"Usage: /tpa <player>. Use /tpcancel to cancel your outgoing request.",
		"Carol wants to teleport. 10s remaining. Use /tpaccept or /tpdeny.",
		"Teleport in progress. Don't move.",
	}, lines)
}

func TestServer_Permissions(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{PermissionsEnabled: true})
	id, _ := f.join(t, "Alice")
	token, err := f.issuer.GenerateToken(id, []string{auth.PermRequest})
	req.NoError(err)

	code, payload := f.call(t, http.MethodPost, "/v1/tpa/deny", token, "")

	req.Equal(http.StatusForbidden, code)
	req.Empty(payload)
}

func TestServer_History(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	id, token := f.join(t, "Alice")
	request := domain.NewRequest(domain.ActorState{ID: id}, domain.ActorState{ID: 99}, domain.KindToTarget, time.Minute, time.Now())
	req.NoError(f.timeline.Consume(context.Background(), event.RequestSubmitted{Request: request}))
	req.NoError(f.timeline.Consume(context.Background(), event.RequestDenied{Request: request}))

	code, payload := f.call(t, http.MethodGet, "/v1/tpa/history", token, "")

	req.Equal(http.StatusOK, code)
	entries := payload["data"].([]any)
	req.Len(entries, 2)
	req.Equal("denied", entries[1].(map[string]any)["stage"])
}

func TestServer_MapSnapshot(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	f.positions.EXPECT().Snapshot().Return(
		repositories.MapMetadata{MapName: "PEI", LevelSize: 1024},
		[]repositories.PlayerPosition{{ActorID: 1, CharacterName: "Alice", Online: true}},
		nil)

	code, payload := f.call(t, http.MethodGet, "/v1/map/snapshot", "", "")

	req.Equal(http.StatusOK, code)
	data := payload["data"].(map[string]any)
	req.Equal("PEI", data["metadata"].(map[string]any)["map_name"])
	req.Len(data["players"], 1)
}

func TestServer_Notifications(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, Config{})
	id, token := f.join(t, "Alice")
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/v1/ws?token=" + token

	// Given a connected notification stream
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	defer conn.Close()
	req.Eventually(func() bool { return f.sessions.Connected(id) }, time.Second, 5*time.Millisecond)

	// When the player is notified
	f.sessions.NotifyError(id, "TPA request expired.")

	// Then the frame reaches the client
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var n domain.Notification
	req.NoError(conn.ReadJSON(&n))
	req.Equal("TPA request expired.", n.Text)
	req.Equal(domain.SeverityError, n.Severity)
	req.Equal(id, n.ActorID)

	// And closing the stream drops the subscription
	req.NoError(conn.Close())
	req.Eventually(func() bool { return !f.sessions.Connected(id) }, 2*time.Second, 10*time.Millisecond)
}
