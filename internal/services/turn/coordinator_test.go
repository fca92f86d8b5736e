package turn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/openmahjong/lounge-go/internal/dependencies/mocks"
	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/services/gamestate"
	"github.com/openmahjong/lounge-go/internal/services/scoring"
	"github.com/openmahjong/lounge-go/internal/storage/memory"
	"github.com/openmahjong/lounge-go/internal/testutil"
)

type CoordinatorSuite struct {
	suite.Suite
	storage     *memory.Storage
	clock       *mocks.MockClock
	store       *gamestate.Store
	coordinator *Coordinator
	ctx         context.Context
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.store = gamestate.NewStore(s.storage, s.clock, logger)
	s.coordinator = NewCoordinator(s.storage, s.store, scoring.NewNMJLEvaluator(nil), s.clock, logger)
	s.ctx = context.Background()
}

// seatRoom creates a room with n seated players p1..pn and saves it
func (s *CoordinatorSuite) seatRoom(id model.RoomID, n int) []model.PlayerID {
	ids := make([]model.PlayerID, 0, n)
	players := make([]model.Player, 0, n)
	for i := 0; i < n; i++ {
		pid := model.PlayerID("p" + string(rune('1'+i)))
		ids = append(ids, pid)
		players = append(players, model.Player{ID: pid, Name: string(pid), IsHost: i == 0})
	}
	room := &model.Room{
		ID:      id,
		HostID:  ids[0],
		Players: players,
		Config:  model.DefaultRoomConfig(),
		Phase:   model.RoomPhaseWaiting,
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	return ids
}

func (s *CoordinatorSuite) setPhase(id model.RoomID, phase model.GamePhase) {
	state, err := s.store.GetGameState(s.ctx, id)
	s.Require().NoError(err)
	state.Phase = phase
	s.Require().NoError(s.storage.SaveGameState(s.ctx, state))
}

// StartGame tests

func (s *CoordinatorSuite) TestStartGameStampsPositions() {
	ids := s.seatRoom("ROOM22", 4)

	state, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	s.Equal(model.GamePhasePlaying, state.Phase)
	s.Equal(ids[0], state.Shared.CurrentPlayer)
	for i, id := range ids {
		ps := state.PlayerStates[id]
		s.Require().NotNil(ps)
		s.Equal(i, ps.Position)
		s.Equal(i == state.DealerPosition, ps.IsDealer)
		s.True(ps.IsActive)
		s.False(ps.IsReady)
		s.Nil(ps.SelectedTiles)
	}
}

func (s *CoordinatorSuite) TestStartGameRejectsShortTurnOrder() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids[:3])
	s.ErrorIs(err, model.ErrValidation)
}

func (s *CoordinatorSuite) TestStartGameRejectsUnseatedPlayer() {
	ids := s.seatRoom("ROOM22", 3)
	order := []model.PlayerID{ids[0], ids[1], "stranger"}
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], order)
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *CoordinatorSuite) TestStartGameRejectsFirstPlayerOutsideOrder() {
	ids := s.seatRoom("ROOM22", 3)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", "stranger", ids)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *CoordinatorSuite) TestStartGameUnknownRoom() {
	_, err := s.coordinator.StartGame(s.ctx, "NOPE42", "p1", []model.PlayerID{"p1"})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// AdvanceTurn tests

func (s *CoordinatorSuite) TestAdvanceTurnHandsOff() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	status, err := s.coordinator.AdvanceTurn(s.ctx, "ROOM22", ids[0], ids[1], 2)
	s.Require().NoError(err)
	s.Equal(ids[1], status.CurrentPlayer)
	s.Equal(2, status.TurnNumber)
	s.Equal(1, status.RoundNumber)
	s.Equal(model.WindEast, status.CurrentWind)
}

func (s *CoordinatorSuite) TestAdvanceTurnRollsRoundAndWind() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	// Turn 5 opens the second round, which plays under the south wind
	status, err := s.coordinator.AdvanceTurn(s.ctx, "ROOM22", ids[0], ids[1], 5)
	s.Require().NoError(err)
	s.Equal(2, status.RoundNumber)
	s.Equal(model.WindSouth, status.CurrentWind)

	state, _ := s.store.GetGameState(s.ctx, "ROOM22")
	s.Equal(2, state.CurrentRound)
	s.Equal(model.WindSouth, state.CurrentWind)
}

func (s *CoordinatorSuite) TestAdvanceTurnRejectsOutOfTurnCaller() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	_, err = s.coordinator.AdvanceTurn(s.ctx, "ROOM22", ids[2], ids[3], 2)
	s.ErrorIs(err, model.ErrNotYourTurn)

	state, _ := s.store.GetGameState(s.ctx, "ROOM22")
	s.Equal(ids[0], state.Shared.CurrentPlayer)
}

func (s *CoordinatorSuite) TestAdvanceTurnRejectsUnseatedNext() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	_, err = s.coordinator.AdvanceTurn(s.ctx, "ROOM22", ids[0], "stranger", 2)
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *CoordinatorSuite) TestAdvanceTurnOutsidePlayingPhase() {
	ids := s.seatRoom("ROOM22", 4)
	s.setPhase("ROOM22", model.GamePhaseCharleston)

	_, err := s.coordinator.AdvanceTurn(s.ctx, "ROOM22", ids[0], ids[1], 2)
	s.ErrorIs(err, model.ErrPhase)
}

func (s *CoordinatorSuite) TestAdvanceTurnRejectsBadTurnNumbers() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	_, err = s.coordinator.AdvanceTurn(s.ctx, "ROOM22", ids[0], ids[1], 0)
	s.ErrorIs(err, model.ErrValidation)

	// Turn 17 would open round 5
	_, err = s.coordinator.AdvanceTurn(s.ctx, "ROOM22", ids[0], ids[1], 17)
	s.ErrorIs(err, model.ErrValidation)
}

// DeclareMahjong tests

func (s *CoordinatorSuite) TestDeclareMahjongValidHandScoresAndEndsPlay() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	hand := []model.Tile{
		"1D", "2D", "3D", "4D", "5D",
		"6D", "6D", "6D",
		"7D", "7D", "7D",
		"8D", "8D",
	}
	result, err := s.coordinator.DeclareMahjong(s.ctx, "ROOM22", ids[0], hand, "CONSECUTIVE RUN-1")
	s.Require().NoError(err)
	s.True(result.Valid)
	s.Equal(len(hand), result.Points)

	state, _ := s.store.GetGameState(s.ctx, "ROOM22")
	s.Equal(model.GamePhaseScoring, state.Phase)
	s.Equal(len(hand), state.PlayerStates[ids[0]].Score)
}

func (s *CoordinatorSuite) TestDeclareMahjongInvalidHandChangesNothing() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	result, err := s.coordinator.DeclareMahjong(s.ctx, "ROOM22", ids[0],
		[]model.Tile{"1D", "9B", "5C"}, "CONSECUTIVE RUN-1")
	s.Require().NoError(err)
	s.False(result.Valid)

	state, _ := s.store.GetGameState(s.ctx, "ROOM22")
	s.Equal(model.GamePhasePlaying, state.Phase)
	s.Zero(state.PlayerStates[ids[0]].Score)
}

func (s *CoordinatorSuite) TestDeclareMahjongOutOfTurn() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	_, err = s.coordinator.DeclareMahjong(s.ctx, "ROOM22", ids[1], []model.Tile{"1D"}, "CONSECUTIVE RUN-1")
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *CoordinatorSuite) TestDeclareMahjongOutsidePlaying() {
	ids := s.seatRoom("ROOM22", 4)
	s.setPhase("ROOM22", model.GamePhaseCharleston)

	_, err := s.coordinator.DeclareMahjong(s.ctx, "ROOM22", ids[0], []model.Tile{"1D"}, "CONSECUTIVE RUN-1")
	s.ErrorIs(err, model.ErrPhase)
}

func (s *CoordinatorSuite) TestDeclareMahjongUnknownPattern() {
	ids := s.seatRoom("ROOM22", 4)
	_, err := s.coordinator.StartGame(s.ctx, "ROOM22", ids[0], ids)
	s.Require().NoError(err)

	_, err = s.coordinator.DeclareMahjong(s.ctx, "ROOM22", ids[0], []model.Tile{"1D"}, "NO SUCH LINE")
	s.ErrorIs(err, model.ErrPatternNotFound)
}
