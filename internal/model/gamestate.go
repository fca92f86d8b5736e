package model

import "time"

// Tile identifies a single mahjong tile, e.g. "4D" (4 dot), "FL" (flower)
type Tile string

// Wind is a seat/round wind
type Wind string

const (
	WindEast  Wind = "east"
	WindSouth Wind = "south"
	WindWest  Wind = "west"
	WindNorth Wind = "north"
)

// WindOrder is the fixed rotation of round winds starting at east
var WindOrder = []Wind{WindEast, WindSouth, WindWest, WindNorth}

// IsValidWind reports whether w is one of the four winds
func IsValidWind(w Wind) bool {
	for _, v := range WindOrder {
		if v == w {
			return true
		}
	}
	return false
}

// GamePhase represents the current phase of a game state record.
// Tracked independently of Room.Phase; nothing couples their transitions.
type GamePhase string

const (
	GamePhaseSetup      GamePhase = "setup"
	GamePhaseCharleston GamePhase = "charleston"
	GamePhasePlaying    GamePhase = "playing"
	GamePhaseScoring    GamePhase = "scoring"
	GamePhaseFinished   GamePhase = "finished"
)

// legalPhaseTransitions is the closed set of allowed phase-change pairs
var legalPhaseTransitions = map[GamePhase][]GamePhase{
	GamePhaseSetup:      {GamePhaseCharleston, GamePhasePlaying},
	GamePhaseCharleston: {GamePhasePlaying},
	GamePhasePlaying:    {GamePhaseScoring, GamePhaseFinished},
	GamePhaseScoring:    {GamePhaseSetup, GamePhaseFinished},
	GamePhaseFinished:   {GamePhaseSetup},
}

// CanTransitionTo reports whether the phase-change from p to next is legal
func (p GamePhase) CanTransitionTo(next GamePhase) bool {
	for _, t := range legalPhaseTransitions[p] {
		if t == next {
			return true
		}
	}
	return false
}

// IsValidGamePhase reports whether p is an enumerated phase
func IsValidGamePhase(p GamePhase) bool {
	switch p {
	case GamePhaseSetup, GamePhaseCharleston, GamePhasePlaying, GamePhaseScoring, GamePhaseFinished:
		return true
	}
	return false
}

const (
	// WallTileTotal is the full NMJL wall (152 would include jokers as
	// separate stock; the synchronized count tracks the 144-tile wall)
	WallTileTotal = 144
	// MaxHandTiles is the largest legal hand size (13 + drawn tile)
	MaxHandTiles = 14
	// MaxRounds is the number of wind rounds in a full game
	MaxRounds = 4
	// MaxPositions bounds the seat index
	MaxPositions = 4
	// MutationHistoryLimit caps the per-room mutation audit ring
	MutationHistoryLimit = 100
)

// PlayerGameState is the per-player sub-state within a game.
// Entries are created on first write; absence means no sub-state yet.
type PlayerGameState struct {
	HandTileCount int
	IsReady       bool
	SelectedTiles []Tile
	Position      int
	Score         int
	IsDealer      bool
	IsActive      bool
}

// SharedState is the portion of game state visible to every player
type SharedState struct {
	DiscardPile        []Tile
	WallTilesRemaining int
	CurrentPlayer      PlayerID // empty when no turn is active
}

// GameState is the authoritative per-room game record. LastUpdated is the
// sole conflict-resolution key for reconciliation.
type GameState struct {
	RoomID          RoomID
	Phase           GamePhase
	CurrentRound    int // 1..MaxRounds
	CurrentWind     Wind
	DealerPosition  int // 0..3
	CharlestonPhase CharlestonPhase // empty outside the charleston ritual
	PlayerStates    map[PlayerID]*PlayerGameState
	Shared          SharedState
	LastUpdated     time.Time
}

// NewGameState returns the default state for a room
func NewGameState(roomID RoomID, now time.Time) *GameState {
	return &GameState{
		RoomID:         roomID,
		Phase:          GamePhaseSetup,
		CurrentRound:   1,
		CurrentWind:    WindEast,
		DealerPosition: 0,
		PlayerStates:   make(map[PlayerID]*PlayerGameState),
		Shared: SharedState{
			DiscardPile:        []Tile{},
			WallTilesRemaining: WallTileTotal,
			CurrentPlayer:      "",
		},
		LastUpdated: now,
	}
}

// PlayerState returns the sub-state for a player, creating it on first use
func (g *GameState) PlayerState(id PlayerID) *PlayerGameState {
	if g.PlayerStates == nil {
		g.PlayerStates = make(map[PlayerID]*PlayerGameState)
	}
	ps, ok := g.PlayerStates[id]
	if !ok {
		ps = &PlayerGameState{IsActive: true}
		g.PlayerStates[id] = ps
	}
	return ps
}

// MutationRecord is one entry in the bounded per-room mutation history.
// It exists for debugging and audit, not for replay or recovery.
type MutationRecord struct {
	Type      UpdateType
	PlayerID  PlayerID
	Update    StateUpdate
	Timestamp time.Time
}
