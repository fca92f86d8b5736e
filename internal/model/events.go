package model

import "time"

// EventType identifies a server-to-client broadcast
type EventType string

const (
	// Global events
	EventRoomListUpdated EventType = "room-list-updated"

	// Room membership events
	EventPlayerJoined EventType = "player-joined"
	EventPlayerLeft   EventType = "player-left"
	EventHostChanged  EventType = "host-changed"
	EventRoomDeleted  EventType = "room-deleted"

	// Game state events
	EventGameStateChanged EventType = "game-state-changed"

	// Charleston events
	EventCharlestonReadyUpdate EventType = "charleston-player-ready-update"
	EventCharlestonExchange    EventType = "charleston-tile-exchange"
	EventCharlestonError       EventType = "charleston-error"

	// Turn events
	EventTurnUpdate EventType = "turn-update"
)

// Event is the base structure for all broadcasts. Room-scoped events
// carry the room ID; EventRoomListUpdated is global.
type Event struct {
	Type      EventType
	RoomID    RoomID
	PlayerID  PlayerID // the player who triggered or is affected, if any
	Timestamp time.Time
	Payload   any
}

// PlayerJoinedPayload contains data for player-joined events
type PlayerJoinedPayload struct {
	Player      Player
	IsSpectator bool
}

// PlayerLeftPayload contains data for player-left events
type PlayerLeftPayload struct {
	PlayerID  PlayerID
	Name      string
	NewHostID PlayerID // empty when the host did not change
}

// RoomDeletedPayload contains data for room-deleted events
type RoomDeletedPayload struct {
	Reason string
}

// GameStateChangedPayload contains data for game-state-changed events
type GameStateChangedPayload struct {
	State  *GameState
	Update StateUpdate
}

// CharlestonReadyPayload contains data for readiness progress events
type CharlestonReadyPayload struct {
	Phase      CharlestonPhase
	ReadyCount int
	Total      int
	PlayerID   PlayerID
}

// CharlestonExchangePayload is delivered per-recipient: each player sees
// only the tiles passed to them.
type CharlestonExchangePayload struct {
	Phase         CharlestonPhase
	NextPhase     CharlestonPhase
	TilesReceived []Tile
}

// TurnUpdatePayload contains data for turn-update events
type TurnUpdatePayload struct {
	CurrentPlayer PlayerID
	TurnNumber    int
	RoundNumber   int
	CurrentWind   Wind
}
