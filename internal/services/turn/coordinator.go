package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openmahjong/lounge-go/internal/dependencies/clock"
	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/services/gamestate"
	"github.com/openmahjong/lounge-go/internal/services/scoring"
	"github.com/openmahjong/lounge-go/internal/storage"
)

// errNoChange aborts a state mutation closure without persisting
// anything; the caller translates it into a no-op result.
var errNoChange = errors.New("no state change")

// Coordinator drives the phase state machine: the charleston exchange
// ritual, turn advancement, and win detection. All state writes go
// through the store's mutation funnel, so they serialize with client
// updates for the same room. Every validation failure surfaces as a
// named error to the requesting caller and produces no state change;
// it never partially advances a sub-phase or partially resets
// readiness.
type Coordinator struct {
	storage   storage.Storage
	store     *gamestate.Store
	evaluator scoring.Evaluator
	clock     clock.Clock
	logger    *slog.Logger
}

// NewCoordinator creates a new turn Coordinator
func NewCoordinator(
	storage storage.Storage,
	store *gamestate.Store,
	evaluator scoring.Evaluator,
	clk clock.Clock,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		storage:   storage,
		store:     store,
		evaluator: evaluator,
		clock:     clk,
		logger:    logger.With(slog.String("component", "turn")),
	}
}

// TurnStatus is the post-advance view broadcast to the room
type TurnStatus struct {
	CurrentPlayer model.PlayerID
	TurnNumber    int
	RoundNumber   int
	CurrentWind   model.Wind
}

// StartGame initializes gameplay turn order. Every id in turnOrder and
// firstPlayer must be a seated room member; seat positions are stamped
// from turnOrder indices.
func (c *Coordinator) StartGame(ctx context.Context, roomID model.RoomID, firstPlayer model.PlayerID, turnOrder []model.PlayerID) (*model.GameState, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if len(turnOrder) != len(room.Players) {
		return nil, fmt.Errorf("%w: turnOrder has %d entries for %d seated players",
			model.ErrValidation, len(turnOrder), len(room.Players))
	}
	for _, id := range turnOrder {
		if room.GetPlayer(id) == nil {
			return nil, fmt.Errorf("%w: %s is not seated in room %s", model.ErrNotInRoom, id, roomID)
		}
	}
	inOrder := false
	for _, id := range turnOrder {
		if id == firstPlayer {
			inOrder = true
			break
		}
	}
	if !inOrder {
		return nil, fmt.Errorf("%w: firstPlayer %s is not in turnOrder", model.ErrValidation, firstPlayer)
	}

	state, err := c.store.MutateGameState(ctx, roomID, func(state *model.GameState) error {
		for i, id := range turnOrder {
			ps := state.PlayerState(id)
			ps.Position = i
			ps.IsDealer = i == state.DealerPosition
			ps.IsActive = true
			ps.IsReady = false
			ps.SelectedTiles = nil
		}
		state.Shared.CurrentPlayer = firstPlayer
		state.Phase = model.GamePhasePlaying
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("room_id", string(roomID)),
		slog.String("first_player", string(firstPlayer)),
		slog.Int("players", len(turnOrder)),
	)

	return state, nil
}

// AdvanceTurn hands the turn from the asserted current player to the
// next. Stale or out-of-turn requests are rejected without touching
// state; requests outside the playing phase are rejected as well.
func (c *Coordinator) AdvanceTurn(ctx context.Context, roomID model.RoomID, currentPlayerID, nextPlayerID model.PlayerID, turnNumber int) (*TurnStatus, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var status *TurnStatus
	_, err = c.store.MutateGameState(ctx, roomID, func(state *model.GameState) error {
		if state.Phase != model.GamePhasePlaying {
			return fmt.Errorf("%w: cannot advance turn while %s", model.ErrPhase, state.Phase)
		}
		if state.Shared.CurrentPlayer != currentPlayerID {
			return fmt.Errorf("%w: current player is %s", model.ErrNotYourTurn, state.Shared.CurrentPlayer)
		}
		if room.GetPlayer(nextPlayerID) == nil {
			return fmt.Errorf("%w: %s is not seated in room %s", model.ErrNotInRoom, nextPlayerID, roomID)
		}
		if turnNumber < 1 {
			return fmt.Errorf("%w: turnNumber %d must be positive", model.ErrValidation, turnNumber)
		}

		round := RoundForTurn(turnNumber)
		if round > model.MaxRounds {
			return fmt.Errorf("%w: turnNumber %d is past the final round", model.ErrValidation, turnNumber)
		}

		state.Shared.CurrentPlayer = nextPlayerID
		state.CurrentRound = round
		state.CurrentWind = WindForRound(round)
		status = &TurnStatus{
			CurrentPlayer: nextPlayerID,
			TurnNumber:    turnNumber,
			RoundNumber:   round,
			CurrentWind:   state.CurrentWind,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Status returns the current turn view without side effects
func (c *Coordinator) Status(ctx context.Context, roomID model.RoomID) (*TurnStatus, error) {
	state, err := c.store.GetGameState(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &TurnStatus{
		CurrentPlayer: state.Shared.CurrentPlayer,
		RoundNumber:   state.CurrentRound,
		CurrentWind:   state.CurrentWind,
	}, nil
}

// DeclareResult is the outcome of a mahjong declaration
type DeclareResult struct {
	Valid  bool
	Points int
}

// DeclareMahjong scores a declared hand through the opaque pattern
// evaluator. A valid declaration ends play and moves the game to
// scoring; an invalid one changes nothing.
func (c *Coordinator) DeclareMahjong(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, hand []model.Tile, pattern string) (*DeclareResult, error) {
	var result *DeclareResult
	_, err := c.store.MutateGameState(ctx, roomID, func(state *model.GameState) error {
		if state.Phase != model.GamePhasePlaying {
			return fmt.Errorf("%w: cannot declare while %s", model.ErrPhase, state.Phase)
		}
		if state.Shared.CurrentPlayer != playerID {
			return fmt.Errorf("%w: current player is %s", model.ErrNotYourTurn, state.Shared.CurrentPlayer)
		}

		valid, points, err := c.evaluator.EvaluateHand(hand, pattern)
		if err != nil {
			return err
		}
		if !valid {
			result = &DeclareResult{Valid: false}
			return errNoChange
		}

		ps := state.PlayerState(playerID)
		ps.Score += points
		state.Phase = model.GamePhaseScoring
		result = &DeclareResult{Valid: true, Points: points}
		return nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return nil, err
	}

	if result.Valid {
		c.logger.Info("mahjong declared",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
			slog.Int("points", result.Points),
		)
	}
	return result, nil
}

// Interface for dependency injection
type CoordinatorInterface interface {
	StartGame(ctx context.Context, roomID model.RoomID, firstPlayer model.PlayerID, turnOrder []model.PlayerID) (*model.GameState, error)
	AdvanceTurn(ctx context.Context, roomID model.RoomID, currentPlayerID, nextPlayerID model.PlayerID, turnNumber int) (*TurnStatus, error)
	Status(ctx context.Context, roomID model.RoomID) (*TurnStatus, error)
	DeclareMahjong(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, hand []model.Tile, pattern string) (*DeclareResult, error)
	MarkPlayerReady(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, tiles []model.Tile, assertedPhase model.CharlestonPhase) (*ReadyStatus, *ExchangeResult, error)
	CharlestonStatus(ctx context.Context, roomID model.RoomID) (*ReadyStatus, error)
	ForceCompletePhase(ctx context.Context, roomID model.RoomID) (*ExchangeResult, error)
}

var _ CoordinatorInterface = (*Coordinator)(nil)
