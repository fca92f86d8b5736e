package turn

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/openmahjong/lounge-go/internal/model"
)

// ReadyStatus is the progress view of the current charleston sub-phase
type ReadyStatus struct {
	Phase      model.CharlestonPhase
	ReadyCount int
	Total      int
	Ready      map[model.PlayerID]bool
}

// ExchangeResult is produced when the last player readies up and the
// sub-phase completes. TilesReceived is keyed per recipient; the gateway
// must deliver each entry only to its owner.
type ExchangeResult struct {
	Phase         model.CharlestonPhase
	NextPhase     model.CharlestonPhase
	TilesReceived map[model.PlayerID][]model.Tile
}

// MarkPlayerReady records a player's pass selection for the current
// charleston sub-phase. When the final seated player readies up the
// exchange executes atomically: tiles route by seat position, every
// selection and ready flag resets, and the sub-phase advances. Until
// that moment nothing moves.
func (c *Coordinator) MarkPlayerReady(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, tiles []model.Tile, assertedPhase model.CharlestonPhase) (*ReadyStatus, *ExchangeResult, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room.GetPlayer(playerID) == nil {
		return nil, nil, fmt.Errorf("%w: %s is not seated in room %s", model.ErrNotInRoom, playerID, roomID)
	}
	if len(tiles) != model.CharlestonPassSize {
		return nil, nil, fmt.Errorf("%w: must pass exactly %d tiles, got %d",
			model.ErrValidation, model.CharlestonPassSize, len(tiles))
	}

	var status *ReadyStatus
	var result *ExchangeResult
	_, err = c.store.MutateGameState(ctx, roomID, func(state *model.GameState) error {
		if state.Phase != model.GamePhaseCharleston {
			return fmt.Errorf("%w: charleston is not in progress (%s)", model.ErrPhase, state.Phase)
		}
		if state.CharlestonPhase == "" {
			state.CharlestonPhase = model.CharlestonOrder(len(room.Players))[0]
		}
		if state.CharlestonPhase == model.CharlestonComplete {
			return fmt.Errorf("%w: charleston already complete", model.ErrPhase)
		}
		if assertedPhase != "" && assertedPhase != state.CharlestonPhase {
			return fmt.Errorf("%w: stale sub-phase %s, current is %s",
				model.ErrValidation, assertedPhase, state.CharlestonPhase)
		}

		ps := state.PlayerState(playerID)
		ps.SelectedTiles = append([]model.Tile(nil), tiles...)
		ps.IsReady = true

		status = c.readyStatus(room, state)
		if status.ReadyCount < status.Total {
			return nil
		}
		result = c.completeExchange(room, state)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if result != nil {
		c.logger.Info("charleston sub-phase completed",
			slog.String("room_id", string(roomID)),
			slog.String("phase", string(result.Phase)),
			slog.String("next_phase", string(result.NextPhase)),
		)
	}
	return status, result, nil
}

// CharlestonStatus returns the readiness view without side effects
func (c *Coordinator) CharlestonStatus(ctx context.Context, roomID model.RoomID) (*ReadyStatus, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	state, err := c.store.GetGameState(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return c.readyStatus(room, state), nil
}

// ForceCompletePhase ends the current sub-phase regardless of readiness.
// Called by the gateway's exchange timer; players who never selected
// pass nothing, so their recipients receive an empty set.
func (c *Coordinator) ForceCompletePhase(ctx context.Context, roomID model.RoomID) (*ExchangeResult, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var result *ExchangeResult
	_, err = c.store.MutateGameState(ctx, roomID, func(state *model.GameState) error {
		if state.Phase != model.GamePhaseCharleston {
			return fmt.Errorf("%w: charleston is not in progress (%s)", model.ErrPhase, state.Phase)
		}
		if state.CharlestonPhase == "" || state.CharlestonPhase == model.CharlestonComplete {
			return fmt.Errorf("%w: no charleston sub-phase to force", model.ErrPhase)
		}
		result = c.completeExchange(room, state)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Warn("charleston sub-phase force-completed",
		slog.String("room_id", string(roomID)),
		slog.String("phase", string(result.Phase)),
	)
	return result, nil
}

func (c *Coordinator) readyStatus(room *model.Room, state *model.GameState) *ReadyStatus {
	status := &ReadyStatus{
		Phase: state.CharlestonPhase,
		Total: len(room.Players),
		Ready: make(map[model.PlayerID]bool, len(room.Players)),
	}
	for _, p := range room.Players {
		ps, ok := state.PlayerStates[p.ID]
		ready := ok && ps.IsReady
		status.Ready[p.ID] = ready
		if ready {
			status.ReadyCount++
		}
	}
	return status
}

// completeExchange routes every selection to its recipient, clears the
// selections and ready flags, and advances the sub-phase. Pure in-memory;
// the caller persists the state.
func (c *Coordinator) completeExchange(room *model.Room, state *model.GameState) *ExchangeResult {
	n := len(room.Players)
	completed := state.CharlestonPhase

	// Seats sorted ascending define the rotation the pass direction
	// indexes into.
	seated := make([]model.PlayerID, 0, n)
	for _, p := range room.Players {
		seated = append(seated, p.ID)
	}
	sort.Slice(seated, func(i, j int) bool {
		return state.PlayerState(seated[i]).Position < state.PlayerState(seated[j]).Position
	})

	received := make(map[model.PlayerID][]model.Tile, n)
	for i, id := range seated {
		src := seated[(i+sourceOffset(completed, n))%n]
		received[id] = append([]model.Tile(nil), state.PlayerState(src).SelectedTiles...)
	}

	for _, id := range seated {
		ps := state.PlayerState(id)
		ps.SelectedTiles = nil
		ps.IsReady = false
	}
	state.CharlestonPhase = model.NextCharlestonPhase(completed, n)

	return &ExchangeResult{
		Phase:         completed,
		NextPhase:     state.CharlestonPhase,
		TilesReceived: received,
	}
}

// sourceOffset maps a pass direction to the rotation distance between a
// recipient and the seat they receive from. The optional pass is an
// across pass; with three seats it falls back to right.
func sourceOffset(phase model.CharlestonPhase, n int) int {
	switch phase {
	case model.CharlestonRight:
		return 1
	case model.CharlestonAcross:
		return 2
	case model.CharlestonLeft:
		return n - 1
	case model.CharlestonOptional:
		if n >= 4 {
			return 2
		}
		return 1
	}
	return 0
}
