package model

import "time"

// RoomID is a short human-typeable code identifying a room
type RoomID string

// RoomPhase represents where a room is in its lifecycle
type RoomPhase string

const (
	RoomPhaseWaiting    RoomPhase = "waiting"    // Lobby, players can still join
	RoomPhaseSetup      RoomPhase = "setup"      // Game initializing
	RoomPhaseCharleston RoomPhase = "charleston" // Tile exchange in progress
	RoomPhasePlaying    RoomPhase = "playing"    // Main gameplay
	RoomPhaseScoring    RoomPhase = "scoring"    // Hand declared, scoring
	RoomPhaseFinished   RoomPhase = "finished"   // Game over
)

// GameMode selects the rule set a room plays under
type GameMode string

const (
	GameModeNMJL     GameMode = "nmjl-2025"
	GameModePractice GameMode = "practice"
	GameModeTutorial GameMode = "tutorial"
)

// KnownGameModes lists every mode CreateRoom accepts
var KnownGameModes = []GameMode{GameModeNMJL, GameModePractice, GameModeTutorial}

const (
	// MinRoomPlayers and MaxRoomPlayers bound the configurable room size
	MinRoomPlayers = 2
	MaxRoomPlayers = 4
	// MaxRoomNameLength bounds the display name of a room
	MaxRoomNameLength = 50
	// MaxSpectators caps spectator admissions per room
	MaxSpectators = 4
	// MaxRoomsPerHost is the per-host concurrent room quota
	MaxRoomsPerHost = 3
)

// RoomConfig holds the configurable settings of a room
type RoomConfig struct {
	MaxPlayers      int
	IsPrivate       bool
	RoomName        string
	GameMode        GameMode
	AllowSpectators bool
}

// DefaultRoomConfig returns the default room configuration
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MaxPlayers:      MaxRoomPlayers,
		IsPrivate:       false,
		GameMode:        GameModeNMJL,
		AllowSpectators: true,
	}
}

// Room is the authoritative membership record for one game session.
// Players is ordered by join time; that order drives host reassignment
// and initial seat allocation.
type Room struct {
	ID           RoomID
	HostID       PlayerID
	Players      []Player
	Spectators   []Player
	Config       RoomConfig
	Phase        RoomPhase
	CreatedAt    time.Time
	LastActivity time.Time
}

// GetPlayer returns the seated player with the given ID, or nil
func (r *Room) GetPlayer(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// GetSpectator returns the spectator with the given ID, or nil
func (r *Room) GetSpectator(id PlayerID) *Player {
	for i := range r.Spectators {
		if r.Spectators[i].ID == id {
			return &r.Spectators[i]
		}
	}
	return nil
}

// HasMember reports whether the ID belongs to a seated player or spectator
func (r *Room) HasMember(id PlayerID) bool {
	return r.GetPlayer(id) != nil || r.GetSpectator(id) != nil
}

// IsFull reports whether every seat is taken
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.Config.MaxPlayers
}

// MemberIDs returns the IDs of all seated players and spectators
func (r *Room) MemberIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(r.Players)+len(r.Spectators))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	for _, s := range r.Spectators {
		ids = append(ids, s.ID)
	}
	return ids
}
