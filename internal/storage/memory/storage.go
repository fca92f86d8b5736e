package memory

import (
	"context"
	"sync"

	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// All maps are confined behind one RWMutex. Rooms and game states are
// stored and returned as deep copies, so a record handed to one caller
// never aliases the stored one or another caller's.
type Storage struct {
	mu sync.RWMutex

	rooms      map[model.RoomID]*model.Room
	playerRoom map[model.PlayerID]model.RoomID
	states     map[model.RoomID]*model.GameState
	mutations  map[model.RoomID][]model.MutationRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:      make(map[model.RoomID]*model.Room),
		playerRoom: make(map[model.PlayerID]model.RoomID),
		states:     make(map[model.RoomID]*model.GameState),
		mutations:  make(map[model.RoomID][]model.MutationRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, cloneRoom(room))
	}
	return rooms, nil
}

// Player-to-room index operations

func (s *Storage) SetPlayerRoom(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerRoom[playerID] = roomID
	return nil
}

func (s *Storage) GetPlayerRoom(ctx context.Context, playerID model.PlayerID) (model.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roomID, ok := s.playerRoom[playerID]
	if !ok {
		return "", model.ErrPlayerNotFound
	}
	return roomID, nil
}

func (s *Storage) DeletePlayerRoom(ctx context.Context, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.playerRoom, playerID)
	return nil
}

// Game state operations

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.RoomID] = cloneGameState(state)
	return nil
}

func (s *Storage) GetGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[roomID]
	if !ok {
		return nil, model.ErrGameStateNotFound
	}
	return cloneGameState(state), nil
}

func (s *Storage) DeleteGameState(ctx context.Context, roomID model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, roomID)
	return nil
}

func (s *Storage) ListGameStates(ctx context.Context) ([]*model.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	states := make([]*model.GameState, 0, len(s.states))
	for _, state := range s.states {
		states = append(states, cloneGameState(state))
	}
	return states, nil
}

// Mutation history operations

func (s *Storage) AppendMutation(ctx context.Context, roomID model.RoomID, rec model.MutationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.mutations[roomID], rec)
	if len(history) > model.MutationHistoryLimit {
		history = history[len(history)-model.MutationHistoryLimit:]
	}
	s.mutations[roomID] = history
	return nil
}

func (s *Storage) GetMutationHistory(ctx context.Context, roomID model.RoomID) ([]model.MutationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.mutations[roomID]
	result := make([]model.MutationRecord, len(history))
	copy(result, history)
	return result, nil
}

func (s *Storage) DeleteMutationHistory(ctx context.Context, roomID model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mutations, roomID)
	return nil
}

// cloneRoom and cloneGameState give the memory backend the same
// snapshot semantics the redis backend gets from serializing values.

func cloneRoom(room *model.Room) *model.Room {
	out := *room
	out.Players = append([]model.Player(nil), room.Players...)
	out.Spectators = append([]model.Player(nil), room.Spectators...)
	return &out
}

func cloneGameState(state *model.GameState) *model.GameState {
	out := *state
	out.PlayerStates = make(map[model.PlayerID]*model.PlayerGameState, len(state.PlayerStates))
	for id, ps := range state.PlayerStates {
		cp := *ps
		cp.SelectedTiles = append([]model.Tile(nil), ps.SelectedTiles...)
		out.PlayerStates[id] = &cp
	}
	out.Shared.DiscardPile = append([]model.Tile(nil), state.Shared.DiscardPile...)
	return &out
}
