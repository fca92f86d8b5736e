package gamestate

import (
	"fmt"

	"github.com/openmahjong/lounge-go/internal/model"
)

// validateUpdate checks one mutation against the current state. The
// switch is exhaustive over the update tag; an unrecognized tag is
// rejected, never silently ignored.
func validateUpdate(state *model.GameState, update model.StateUpdate) error {
	switch update.Type {
	case model.UpdatePhaseChange:
		return validatePhaseChange(state, update.PhaseChange)
	case model.UpdatePlayerState:
		return validatePlayerState(update.PlayerState)
	case model.UpdateSharedState:
		return validateSharedState(update.SharedState)
	case model.UpdateRoundChange:
		return validateRoundChange(update.RoundChange)
	case model.UpdateTurnChange:
		return validateTurnChange(state, update.TurnChange)
	default:
		return fmt.Errorf("%w: %q", model.ErrUnknownUpdateType, update.Type)
	}
}

func validatePhaseChange(state *model.GameState, u *model.PhaseChangeUpdate) error {
	if u == nil {
		return fmt.Errorf("%w: phase-change payload missing", model.ErrValidation)
	}
	if !model.IsValidGamePhase(u.Phase) {
		return fmt.Errorf("%w: unknown phase %q", model.ErrValidation, u.Phase)
	}
	if !state.Phase.CanTransitionTo(u.Phase) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, state.Phase, u.Phase)
	}
	return nil
}

func validatePlayerState(u *model.PlayerStateUpdate) error {
	if u == nil {
		return fmt.Errorf("%w: player-state payload missing", model.ErrValidation)
	}
	if u.HandTileCount != nil && (*u.HandTileCount < 0 || *u.HandTileCount > model.MaxHandTiles) {
		return fmt.Errorf("%w: handTileCount %d out of range [0,%d]",
			model.ErrValidation, *u.HandTileCount, model.MaxHandTiles)
	}
	if u.Position != nil && (*u.Position < 0 || *u.Position >= model.MaxPositions) {
		return fmt.Errorf("%w: position %d out of range [0,%d]",
			model.ErrValidation, *u.Position, model.MaxPositions-1)
	}
	if u.Score != nil && *u.Score < 0 {
		return fmt.Errorf("%w: score %d must not be negative", model.ErrValidation, *u.Score)
	}
	return nil
}

func validateSharedState(u *model.SharedStateUpdate) error {
	if u == nil {
		return fmt.Errorf("%w: shared-state payload missing", model.ErrValidation)
	}
	if u.WallTilesRemaining != nil && (*u.WallTilesRemaining < 0 || *u.WallTilesRemaining > model.WallTileTotal) {
		return fmt.Errorf("%w: wallTilesRemaining %d out of range [0,%d]",
			model.ErrValidation, *u.WallTilesRemaining, model.WallTileTotal)
	}
	if u.CurrentWind != nil && !model.IsValidWind(*u.CurrentWind) {
		return fmt.Errorf("%w: unknown wind %q", model.ErrValidation, *u.CurrentWind)
	}
	if u.RoundNumber != nil && (*u.RoundNumber < 1 || *u.RoundNumber > model.MaxRounds) {
		return fmt.Errorf("%w: roundNumber %d out of range [1,%d]",
			model.ErrValidation, *u.RoundNumber, model.MaxRounds)
	}
	return nil
}

func validateRoundChange(u *model.RoundChangeUpdate) error {
	if u == nil {
		return fmt.Errorf("%w: round-change payload missing", model.ErrValidation)
	}
	// Round and wind always travel together; there is no partial write
	if u.Round < 1 || u.Round > model.MaxRounds {
		return fmt.Errorf("%w: round %d out of range [1,%d]", model.ErrValidation, u.Round, model.MaxRounds)
	}
	if !model.IsValidWind(u.Wind) {
		return fmt.Errorf("%w: unknown wind %q", model.ErrValidation, u.Wind)
	}
	return nil
}

func validateTurnChange(state *model.GameState, u *model.TurnChangeUpdate) error {
	if u == nil {
		return fmt.Errorf("%w: turn-change payload missing", model.ErrValidation)
	}
	if u.CurrentPlayer == "" {
		return fmt.Errorf("%w: currentPlayer must not be empty", model.ErrValidation)
	}
	// The turn can only be handed to a player the store has heard of
	if _, ok := state.PlayerStates[u.CurrentPlayer]; !ok {
		return fmt.Errorf("%w: %s has no recorded state", model.ErrPlayerNotFound, u.CurrentPlayer)
	}
	return nil
}

// applyUpdate writes an already-validated mutation into the state.
// playerID is the acting player; player-state merges target their entry.
func applyUpdate(state *model.GameState, playerID model.PlayerID, update model.StateUpdate) {
	switch update.Type {
	case model.UpdatePhaseChange:
		state.Phase = update.PhaseChange.Phase

	case model.UpdatePlayerState:
		// Shallow merge: set fields overwrite, nil fields are preserved
		u := update.PlayerState
		ps := state.PlayerState(playerID)
		if u.HandTileCount != nil {
			ps.HandTileCount = *u.HandTileCount
		}
		if u.IsReady != nil {
			ps.IsReady = *u.IsReady
		}
		if u.SelectedTiles != nil {
			ps.SelectedTiles = u.SelectedTiles
		}
		if u.Position != nil {
			ps.Position = *u.Position
		}
		if u.Score != nil {
			ps.Score = *u.Score
		}
		if u.IsDealer != nil {
			ps.IsDealer = *u.IsDealer
		}
		if u.IsActive != nil {
			ps.IsActive = *u.IsActive
		}

	case model.UpdateSharedState:
		u := update.SharedState
		if u.WallTilesRemaining != nil {
			state.Shared.WallTilesRemaining = *u.WallTilesRemaining
		}
		if u.CurrentWind != nil {
			state.CurrentWind = *u.CurrentWind
		}
		if u.RoundNumber != nil {
			state.CurrentRound = *u.RoundNumber
		}
		if u.Discard != nil {
			state.Shared.DiscardPile = append(state.Shared.DiscardPile, *u.Discard)
		}

	case model.UpdateRoundChange:
		state.CurrentRound = update.RoundChange.Round
		state.CurrentWind = update.RoundChange.Wind

	case model.UpdateTurnChange:
		state.Shared.CurrentPlayer = update.TurnChange.CurrentPlayer
	}
}
