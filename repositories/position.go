//go:generate go run go.uber.org/mock/mockgen -source=position.go -destination=../mocks/mock_position_repository.go -package=mocks
package repositories

import (
	"math"
	"sort"
	"strings"
	"time"
	"tpa-lab/domain"
)

const (
	unknownSurvivor = "Unknown Survivor"
	unknownMap      = "Unknown"
)

// IPositionRepository persists the last known position of every player for map dashboards.
type IPositionRepository interface {
	UpsertMetadata(meta MapMetadata) error
	UpsertPlayers(players []PlayerPosition) error
	MarkOffline(id domain.ActorID, at time.Time) error
	// MarkStale flags online players not seen since before as offline and returns how many changed.
	MarkStale(before time.Time) (int, error)
	Snapshot() (MapMetadata, []PlayerPosition, error)
	Close() error
}

type MapMetadata struct {
	MapName    string    `json:"map_name"`
	LevelSize  int       `json:"level_size"`
	LastSynced time.Time `json:"last_synced_utc"`
}

type PlayerPosition struct {
	ActorID       domain.ActorID `json:"actor_id"`
	CharacterName string         `json:"character_name"`
	GroupName     string         `json:"group_name,omitempty"`
	Position      domain.Vec3    `json:"position"`
	RotationY     float64        `json:"rotation_y"`
	Online        bool           `json:"is_online"`
	LastSeen      time.Time      `json:"last_seen_utc"`
}

// NewPlayerPosition snapshots a live actor. Coordinates are rounded to 3 decimals,
// halves away from zero.
func NewPlayerPosition(actor domain.ActorState, at time.Time) PlayerPosition {
	name := actor.CharacterName
	if strings.TrimSpace(name) == "" {
		name = actor.DisplayName
	}
	if strings.TrimSpace(name) == "" {
		name = unknownSurvivor
	}
	return PlayerPosition{
		ActorID:       actor.ID,
		CharacterName: name,
		GroupName:     strings.TrimSpace(actor.GroupName),
		Position: domain.Vec3{
			X: round3(actor.Position.X),
			Y: round3(actor.Position.Y),
			Z: round3(actor.Position.Z),
		},
		RotationY: round3(actor.Orientation.Yaw),
		Online:    true,
		LastSeen:  at.UTC(),
	}
}

func NewMapMetadata(mapName string, levelSize int, at time.Time) MapMetadata {
	if strings.TrimSpace(mapName) == "" {
		mapName = unknownMap
	}
	return MapMetadata{MapName: mapName, LevelSize: levelSize, LastSynced: at.UTC()}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// sortForMap puts online players first, then the most recently seen.
func sortForMap(players []PlayerPosition) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Online != b.Online {
			return a.Online
		}
		if !a.LastSeen.Equal(b.LastSeen) {
			return a.LastSeen.After(b.LastSeen)
		}
		return a.ActorID < b.ActorID
	})
}
