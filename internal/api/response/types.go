package response

import (
	"time"

	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/services/registry"
)

// PlayerResponse is the API representation of a room member
type PlayerResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"isHost"`
	JoinedAt time.Time `json:"joinedAt"`
}

// RoomConfigResponse is the API representation of a room's settings
type RoomConfigResponse struct {
	MaxPlayers      int    `json:"maxPlayers"`
	IsPrivate       bool   `json:"isPrivate"`
	RoomName        string `json:"roomName,omitempty"`
	GameMode        string `json:"gameMode"`
	AllowSpectators bool   `json:"allowSpectators"`
}

// RoomResponse is the API representation of a room
type RoomResponse struct {
	ID           string             `json:"id"`
	HostID       string             `json:"hostId"`
	Players      []PlayerResponse   `json:"players"`
	Spectators   []PlayerResponse   `json:"spectators,omitempty"`
	Config       RoomConfigResponse `json:"config"`
	Phase        string             `json:"phase"`
	CreatedAt    time.Time          `json:"createdAt"`
	LastActivity time.Time          `json:"lastActivity"`
}

// RoomListResponse wraps the public room listing
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// PlayerGameStateResponse is the API representation of per-player state
type PlayerGameStateResponse struct {
	HandTileCount int          `json:"handTileCount"`
	IsReady       bool         `json:"isReady"`
	SelectedTiles []model.Tile `json:"selectedTiles,omitempty"`
	Position      int          `json:"position"`
	Score         int          `json:"score"`
	IsDealer      bool         `json:"isDealer"`
	IsActive      bool         `json:"isActive"`
}

// SharedStateResponse is the API representation of shared game state
type SharedStateResponse struct {
	DiscardPile        []model.Tile `json:"discardPile"`
	WallTilesRemaining int          `json:"wallTilesRemaining"`
	CurrentPlayer      string       `json:"currentPlayer,omitempty"`
}

// GameStateResponse is the API representation of a room's game state
type GameStateResponse struct {
	RoomID          string                             `json:"roomId"`
	Phase           string                             `json:"phase"`
	CurrentRound    int                                `json:"currentRound"`
	CurrentWind     string                             `json:"currentWind"`
	DealerPosition  int                                `json:"dealerPosition"`
	CharlestonPhase string                             `json:"charlestonPhase,omitempty"`
	PlayerStates    map[string]PlayerGameStateResponse `json:"playerStates"`
	Shared          SharedStateResponse                `json:"sharedState"`
	LastUpdated     time.Time                          `json:"lastUpdated"`
}

// MutationResponse is one entry of a room's mutation history
type MutationResponse struct {
	Type      string            `json:"type"`
	PlayerID  string            `json:"playerId"`
	Update    model.StateUpdate `json:"update"`
	Timestamp time.Time         `json:"timestamp"`
}

// HistoryResponse wraps a room's bounded mutation history
type HistoryResponse struct {
	RoomID    string             `json:"roomId"`
	Mutations []MutationResponse `json:"mutations"`
}

// StatsResponse is the API representation of registry statistics
type StatsResponse struct {
	TotalRooms   int            `json:"totalRooms"`
	TotalPlayers int            `json:"totalPlayers"`
	RoomsByPhase map[string]int `json:"roomsByPhase"`
}

// PlayerFromModel converts a model player to its API representation
func PlayerFromModel(p model.Player) PlayerResponse {
	return PlayerResponse{
		ID:       string(p.ID),
		Name:     p.Name,
		IsHost:   p.IsHost,
		JoinedAt: p.JoinedAt,
	}
}

// RoomFromModel converts a model room to its API representation
func RoomFromModel(room *model.Room) RoomResponse {
	players := make([]PlayerResponse, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, PlayerFromModel(p))
	}
	var spectators []PlayerResponse
	for _, s := range room.Spectators {
		spectators = append(spectators, PlayerFromModel(s))
	}
	return RoomResponse{
		ID:         string(room.ID),
		HostID:     string(room.HostID),
		Players:    players,
		Spectators: spectators,
		Config: RoomConfigResponse{
			MaxPlayers:      room.Config.MaxPlayers,
			IsPrivate:       room.Config.IsPrivate,
			RoomName:        room.Config.RoomName,
			GameMode:        string(room.Config.GameMode),
			AllowSpectators: room.Config.AllowSpectators,
		},
		Phase:        string(room.Phase),
		CreatedAt:    room.CreatedAt,
		LastActivity: room.LastActivity,
	}
}

// GameStateFromModel converts a model game state to its API representation
func GameStateFromModel(state *model.GameState) GameStateResponse {
	playerStates := make(map[string]PlayerGameStateResponse, len(state.PlayerStates))
	for id, ps := range state.PlayerStates {
		playerStates[string(id)] = PlayerGameStateResponse{
			HandTileCount: ps.HandTileCount,
			IsReady:       ps.IsReady,
			SelectedTiles: ps.SelectedTiles,
			Position:      ps.Position,
			Score:         ps.Score,
			IsDealer:      ps.IsDealer,
			IsActive:      ps.IsActive,
		}
	}
	return GameStateResponse{
		RoomID:          string(state.RoomID),
		Phase:           string(state.Phase),
		CurrentRound:    state.CurrentRound,
		CurrentWind:     string(state.CurrentWind),
		DealerPosition:  state.DealerPosition,
		CharlestonPhase: string(state.CharlestonPhase),
		PlayerStates:    playerStates,
		Shared: SharedStateResponse{
			DiscardPile:        state.Shared.DiscardPile,
			WallTilesRemaining: state.Shared.WallTilesRemaining,
			CurrentPlayer:      string(state.Shared.CurrentPlayer),
		},
		LastUpdated: state.LastUpdated,
	}
}

// HistoryFromModel converts a room's mutation records to the API shape
func HistoryFromModel(roomID model.RoomID, records []model.MutationRecord) HistoryResponse {
	mutations := make([]MutationResponse, 0, len(records))
	for _, rec := range records {
		mutations = append(mutations, MutationResponse{
			Type:      string(rec.Type),
			PlayerID:  string(rec.PlayerID),
			Update:    rec.Update,
			Timestamp: rec.Timestamp,
		})
	}
	return HistoryResponse{
		RoomID:    string(roomID),
		Mutations: mutations,
	}
}

// StatsFromModel converts registry stats to the API shape
func StatsFromModel(stats *registry.Stats) StatsResponse {
	byPhase := make(map[string]int, len(stats.RoomsByPhase))
	for phase, n := range stats.RoomsByPhase {
		byPhase[string(phase)] = n
	}
	return StatsResponse{
		TotalRooms:   stats.TotalRooms,
		TotalPlayers: stats.TotalPlayers,
		RoomsByPhase: byPhase,
	}
}
