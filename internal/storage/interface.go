package storage

import (
	"context"

	"github.com/openmahjong/lounge-go/internal/model"
)

// Storage defines the interface for room and game state persistence.
// The player-to-room index must be updated in the same logical step as
// membership changes so stale entries never survive a removal.
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Player-to-room index operations
	SetPlayerRoom(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) error
	GetPlayerRoom(ctx context.Context, playerID model.PlayerID) (model.RoomID, error)
	DeletePlayerRoom(ctx context.Context, playerID model.PlayerID) error

	// Game state operations
	SaveGameState(ctx context.Context, state *model.GameState) error
	GetGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error)
	DeleteGameState(ctx context.Context, roomID model.RoomID) error
	ListGameStates(ctx context.Context) ([]*model.GameState, error)

	// Mutation history operations (bounded ring, oldest evicted first)
	AppendMutation(ctx context.Context, roomID model.RoomID, rec model.MutationRecord) error
	GetMutationHistory(ctx context.Context, roomID model.RoomID) ([]model.MutationRecord, error)
	DeleteMutationHistory(ctx context.Context, roomID model.RoomID) error
}
