package server

import (
	"fmt"
	"tpa-lab/domain"
)

const offlinePlayer = "(offline player)"

// statusLines renders the answer of a bare /tpa.
func statusLines(s domain.StatusOutcome) []string {
	var lines []string
	if s.Outgoing != nil {
		lines = append(lines, fmt.Sprintf("Pending request to %s. %ds remaining. Use /tpcancel to cancel.",
			counterpart(s.Outgoing), s.Outgoing.SecondsRemaining))
	} else {
		lines = append(lines, "Usage: /tpa <player>. Use /tpcancel to cancel your outgoing request.")
	}
	if s.Incoming != nil {
		lines = append(lines, fmt.Sprintf("%s wants to teleport. %ds remaining. Use /tpaccept or /tpdeny.",
			counterpart(s.Incoming), s.Incoming.SecondsRemaining))
	}
	if s.TeleportInFlight {
		lines = append(lines, "Teleport in progress. Don't move.")
	}
	if s.OnCooldown {
		lines = append(lines, fmt.Sprintf("Cooldown remaining: %ds", s.CooldownRemaining))
	}
	return lines
}

func counterpart(v *domain.PendingView) string {
	if !v.CounterpartOnline {
		return offlinePlayer
	}
	return v.CounterpartName
}
