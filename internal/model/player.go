package model

import "time"

// PlayerID uniquely identifies a connected player
type PlayerID string

// Player is a room-scoped participant record. It is owned by its Room
// and destroyed when the player leaves or the room is deleted.
type Player struct {
	ID       PlayerID
	Name     string
	IsHost   bool
	JoinedAt time.Time
}
