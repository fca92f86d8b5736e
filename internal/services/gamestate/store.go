package gamestate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openmahjong/lounge-go/internal/dependencies/clock"
	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/roomlock"
	"github.com/openmahjong/lounge-go/internal/storage"
)

// Store is the authoritative per-room game state holder. Every mutation
// runs its read-validate-apply-save sequence while holding that room's
// lock, so concurrent requests for one room apply in a total order and
// a rejected update never leaves partial effects.
type Store struct {
	storage storage.Storage
	clock   clock.Clock
	locks   *roomlock.Locker
	logger  *slog.Logger
}

// NewStore creates a new game state Store
func NewStore(storage storage.Storage, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		clock:   clk,
		locks:   roomlock.New(),
		logger:  logger.With(slog.String("component", "gamestate")),
	}
}

// InitializeGameState creates the default state for a room. Re-initializing
// overwrites; callers that must not clobber existing state check first.
func (s *Store) InitializeGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	state := model.NewGameState(roomID, s.clock.Now())
	if err := s.storage.SaveGameState(ctx, state); err != nil {
		return nil, err
	}
	s.logger.Info("game state initialized", slog.String("room_id", string(roomID)))
	return state, nil
}

// GetGameState retrieves a room's state, lazily initializing it
func (s *Store) GetGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()
	return s.getOrInit(ctx, roomID)
}

// getOrInit is the lock-free fetch used by methods already holding the
// room's lock.
func (s *Store) getOrInit(ctx context.Context, roomID model.RoomID) (*model.GameState, error) {
	state, err := s.storage.GetGameState(ctx, roomID)
	if errors.Is(err, model.ErrGameStateNotFound) {
		state = model.NewGameState(roomID, s.clock.Now())
		if err := s.storage.SaveGameState(ctx, state); err != nil {
			return nil, err
		}
		s.logger.Info("game state initialized", slog.String("room_id", string(roomID)))
		return state, nil
	}
	return state, err
}

// MutateGameState runs fn against the room's current state while holding
// the room's lock, then stamps LastUpdated and persists the result. An
// error from fn aborts the whole operation with nothing written. This is
// the funnel the turn coordinator drives its mutations through.
func (s *Store) MutateGameState(ctx context.Context, roomID model.RoomID, fn func(*model.GameState) error) (*model.GameState, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	state, err := s.getOrInit(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	state.LastUpdated = s.clock.Now()
	if err := s.storage.SaveGameState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ProcessUpdate validates and applies one typed mutation. Validation
// failure aborts the whole operation; nothing is written and the current
// state is untouched.
func (s *Store) ProcessUpdate(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, update model.StateUpdate) (*model.GameState, error) {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	state, err := s.getOrInit(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := validateUpdate(state, update); err != nil {
		return nil, err
	}

	applyUpdate(state, playerID, update)
	now := s.clock.Now()
	state.LastUpdated = now

	if err := s.storage.SaveGameState(ctx, state); err != nil {
		return nil, err
	}

	rec := model.MutationRecord{
		Type:      update.Type,
		PlayerID:  playerID,
		Update:    update,
		Timestamp: now,
	}
	if err := s.storage.AppendMutation(ctx, roomID, rec); err != nil {
		return nil, err
	}

	s.logger.Debug("update applied",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)),
		slog.String("type", string(update.Type)),
	)

	return state, nil
}

// SyncGameState reconciles a remote copy against the local state using
// last-writer-wins on LastUpdated. Whichever side is newer wins in its
// entirety; there is no field-level merge, so concurrent edits on the
// losing side are discarded.
func (s *Store) SyncGameState(ctx context.Context, roomID model.RoomID, remote *model.GameState) (*model.GameState, error) {
	if !s.ValidateGameState(remote) {
		return nil, fmt.Errorf("%w: remote state failed structural checks", model.ErrValidation)
	}

	unlock := s.locks.Lock(roomID)
	defer unlock()

	local, err := s.getOrInit(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !remote.LastUpdated.After(local.LastUpdated) {
		return local, nil
	}

	remote.RoomID = roomID
	if err := s.storage.SaveGameState(ctx, remote); err != nil {
		return nil, err
	}

	s.logger.Info("remote state accepted",
		slog.String("room_id", string(roomID)),
		slog.Time("remote_updated", remote.LastUpdated),
		slog.Time("local_updated", local.LastUpdated),
	)
	return remote, nil
}

// ValidateGameState structurally checks state received from outside the
// store before it is trusted.
func (s *Store) ValidateGameState(state *model.GameState) bool {
	if state == nil || state.RoomID == "" {
		return false
	}
	if !model.IsValidGamePhase(state.Phase) {
		return false
	}
	if state.CurrentRound < 1 || state.CurrentRound > model.MaxRounds {
		return false
	}
	if !model.IsValidWind(state.CurrentWind) {
		return false
	}
	if state.DealerPosition < 0 || state.DealerPosition >= model.MaxPositions {
		return false
	}
	if state.Shared.WallTilesRemaining < 0 || state.Shared.WallTilesRemaining > model.WallTileTotal {
		return false
	}
	return true
}

// CleanupPlayerState deletes a departed player's sub-state from every
// room. Must run on every disconnect or leave; skipping it lets stale
// entries accumulate without bound.
func (s *Store) CleanupPlayerState(ctx context.Context, playerID model.PlayerID) error {
	states, err := s.storage.ListGameStates(ctx)
	if err != nil {
		return err
	}

	for _, listed := range states {
		if _, ok := listed.PlayerStates[playerID]; !ok {
			continue
		}
		if err := s.purgePlayer(ctx, listed.RoomID, playerID); err != nil {
			return err
		}
	}
	return nil
}

// purgePlayer re-reads one room's state under its lock and removes the
// player's entry if it is still present.
func (s *Store) purgePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	state, err := s.storage.GetGameState(ctx, roomID)
	if errors.Is(err, model.ErrGameStateNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, ok := state.PlayerStates[playerID]; !ok {
		return nil
	}

	delete(state.PlayerStates, playerID)
	if state.Shared.CurrentPlayer == playerID {
		state.Shared.CurrentPlayer = ""
	}
	state.LastUpdated = s.clock.Now()
	if err := s.storage.SaveGameState(ctx, state); err != nil {
		return err
	}
	s.logger.Info("player state purged",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)),
	)
	return nil
}

// GetUpdateHistory returns the bounded mutation history, oldest first
func (s *Store) GetUpdateHistory(ctx context.Context, roomID model.RoomID) ([]model.MutationRecord, error) {
	return s.storage.GetMutationHistory(ctx, roomID)
}

// ClearGameState removes a room's state and history
func (s *Store) ClearGameState(ctx context.Context, roomID model.RoomID) error {
	unlock := s.locks.Lock(roomID)
	defer unlock()

	if err := s.storage.DeleteGameState(ctx, roomID); err != nil {
		return err
	}
	return s.storage.DeleteMutationHistory(ctx, roomID)
}

// Interface for dependency injection
type StoreInterface interface {
	InitializeGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error)
	GetGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error)
	ProcessUpdate(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, update model.StateUpdate) (*model.GameState, error)
	SyncGameState(ctx context.Context, roomID model.RoomID, remote *model.GameState) (*model.GameState, error)
	ValidateGameState(state *model.GameState) bool
	CleanupPlayerState(ctx context.Context, playerID model.PlayerID) error
	GetUpdateHistory(ctx context.Context, roomID model.RoomID) ([]model.MutationRecord, error)
	ClearGameState(ctx context.Context, roomID model.RoomID) error
}

var _ StoreInterface = (*Store)(nil)
