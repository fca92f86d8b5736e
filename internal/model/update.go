package model

// UpdateType tags a StateUpdate with its kind
type UpdateType string

const (
	UpdatePhaseChange UpdateType = "phase-change"
	UpdatePlayerState UpdateType = "player-state"
	UpdateSharedState UpdateType = "shared-state"
	UpdateRoundChange UpdateType = "round-change"
	UpdateTurnChange  UpdateType = "turn-change"
)

// StateUpdate is the tagged union of every mutation a client may request
// against a game state. Exactly one payload field matching Type must be
// set; validation rejects anything else before any write happens.
type StateUpdate struct {
	Type        UpdateType         `json:"type"`
	PhaseChange *PhaseChangeUpdate `json:"phase_change,omitempty"`
	PlayerState *PlayerStateUpdate `json:"player_state,omitempty"`
	SharedState *SharedStateUpdate `json:"shared_state,omitempty"`
	RoundChange *RoundChangeUpdate `json:"round_change,omitempty"`
	TurnChange  *TurnChangeUpdate  `json:"turn_change,omitempty"`
}

// PhaseChangeUpdate moves the game to a new phase
type PhaseChangeUpdate struct {
	Phase GamePhase `json:"phase"`
}

// PlayerStateUpdate merges fields into one player's sub-state.
// Nil fields are preserved; set fields are validated then written.
type PlayerStateUpdate struct {
	HandTileCount *int   `json:"hand_tile_count,omitempty"`
	IsReady       *bool  `json:"is_ready,omitempty"`
	SelectedTiles []Tile `json:"selected_tiles,omitempty"`
	Position      *int   `json:"position,omitempty"`
	Score         *int   `json:"score,omitempty"`
	IsDealer      *bool  `json:"is_dealer,omitempty"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

// SharedStateUpdate merges fields into the shared state. Discard appends
// one tile to the discard pile, which is append-only during play.
type SharedStateUpdate struct {
	WallTilesRemaining *int  `json:"wall_tiles_remaining,omitempty"`
	CurrentWind        *Wind `json:"current_wind,omitempty"`
	RoundNumber        *int  `json:"round_number,omitempty"`
	Discard            *Tile `json:"discard,omitempty"`
}

// RoundChangeUpdate writes round and wind together; no partial update
type RoundChangeUpdate struct {
	Round int  `json:"round"`
	Wind  Wind `json:"wind"`
}

// TurnChangeUpdate hands the turn to another known player
type TurnChangeUpdate struct {
	CurrentPlayer PlayerID `json:"current_player"`
}
