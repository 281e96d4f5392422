// Package domain contains core concepts of the teleport system.
// This file defines actors (connected players) and their live world state.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"math"
	"strconv"
)

// ActorID identifies a connected player for the lifetime of the host process.
type ActorID uint64

func (id ActorID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func ParseActorID(s string) (ActorID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ActorID(v), nil
}

// Vec3 is a world position.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Distance(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Orientation is the facing of an actor, in degrees.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// ActorState is the live view of an online actor as returned by the player directory.
type ActorState struct {
	ID            ActorID
	DisplayName   string
	CharacterName string
	GroupName     string
	Position      Vec3
	Orientation   Orientation
}

// Name prefers the display name and falls back on the character name.
func (a ActorState) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.CharacterName
}

type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchFound
	MatchAmbiguous
)

// Match is the result of a fuzzy player lookup.
type Match struct {
	Kind    MatchKind
	Actor   ActorState
	Preview []string // up to 5 candidate names when ambiguous
	Total   int      // number of candidates when ambiguous
}
