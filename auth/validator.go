package auth

import (
	"fmt"
	"tpa-lab/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SessionRequest joins the world as a new player.
type SessionRequest struct {
	DisplayName   string  `json:"display_name" validate:"required,max=32"`
	CharacterName string  `json:"character_name" validate:"omitempty,max=32"`
	GroupName     string  `json:"group_name" validate:"omitempty,max=32"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Z             float64 `json:"z"`
	Yaw           float64 `json:"yaw" validate:"gte=-360,lte=360"`
}

type MoveRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw" validate:"gte=-360,lte=360"`
	Pitch float64 `json:"pitch" validate:"gte=-90,lte=90"`
}

// TpaRequest carries the target query of a request. An empty query is rejected later
// with a player facing message, so it is not required here.
type TpaRequest struct {
	Query string `json:"query" validate:"max=64"`
	Kind  string `json:"kind" validate:"omitempty,oneof=to_target summon tpa tpahere"`
}

func ValidateSession(req SessionRequest) error {
	return check(req)
}

func ValidateMove(req MoveRequest) error {
	return check(req)
}

func ValidateTpa(req TpaRequest) error {
	return check(req)
}

func check(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}
