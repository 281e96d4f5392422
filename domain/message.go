// Package domain contains core concepts of the teleport system.
// This file defines Notifications delivered to players.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notification is an immutable line of text pushed to a player.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	ActorID   ActorID   `json:"actor_id"`
	Severity  Severity  `json:"severity"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
