package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"tpa-lab/errors"
)

type apiError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiSuccess struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiSuccess{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Status: "error", Code: code, Message: message})
}

// writeDomainError renders a command failure with the text shown to players.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code, message := mapDomainError(err)
	writeError(w, status, code, message)
}

func mapDomainError(err error) (int, string, string) {
	var notFound errors.PlayerNotFoundError
	var ambiguous errors.AmbiguousMatchError
	var cooldown errors.CooldownError
	switch {
	case errors.As(err, &notFound):
		if notFound.Query == "" {
			return http.StatusBadRequest, "missing_player", "You must specify a player name."
		}
		return http.StatusNotFound, "player_not_found", "No players matched '" + notFound.Query + "'."
	case errors.As(err, &ambiguous):
		message := "Multiple matches: " + strings.Join(ambiguous.Preview, ", ")
		if ambiguous.Truncated {
			message += "..."
		}
		return http.StatusConflict, "ambiguous_match", message
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests, "cooldown", "Cooldown: " + strconv.Itoa(cooldown.Remaining) + "s"
	case errors.Is(err, errors.ErrSelfTargetNotAllowed):
		return http.StatusBadRequest, "self_target", "You cannot send a TPA to yourself."
	case errors.Is(err, errors.ErrNoPendingRequest):
		return http.StatusNotFound, "no_pending_request", "No pending TPA."
	case errors.Is(err, errors.ErrNoOutgoingRequest):
		return http.StatusNotFound, "no_outgoing_request", "You have no outgoing TPA request."
	case errors.Is(err, errors.ErrRequesterOffline):
		return http.StatusConflict, "requester_offline", "Requester offline."
	case errors.Is(err, errors.ErrDestinationOffline):
		return http.StatusConflict, "destination_offline", "Target offline."
	case errors.Is(err, errors.ErrTeleportFailed):
		return http.StatusInternalServerError, "teleport_failed", "Teleport failed."
	case errors.Is(err, errors.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found", "Player not found."
	case errors.Is(err, errors.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized", "invalid or missing credentials"
	case errors.Is(err, errors.ErrForbidden):
		return http.StatusForbidden, "forbidden", "You don't have permission to do that."
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}
