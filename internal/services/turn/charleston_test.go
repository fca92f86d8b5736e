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

type CharlestonSuite struct {
	suite.Suite
	storage     *memory.Storage
	clock       *mocks.MockClock
	store       *gamestate.Store
	coordinator *Coordinator
	ctx         context.Context
}

func TestCharlestonSuite(t *testing.T) {
	suite.Run(t, new(CharlestonSuite))
}

func (s *CharlestonSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := testutil.NopLogger()
	s.store = gamestate.NewStore(s.storage, s.clock, logger)
	s.coordinator = NewCoordinator(s.storage, s.store, scoring.NewNMJLEvaluator(nil), s.clock, logger)
	s.ctx = context.Background()
}

// startCharleston seats n players p1..pn at positions 0..n-1 and moves
// the game into the charleston phase.
func (s *CharlestonSuite) startCharleston(id model.RoomID, n int) []model.PlayerID {
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
		Phase:   model.RoomPhaseCharleston,
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	state, err := s.store.GetGameState(s.ctx, id)
	s.Require().NoError(err)
	state.Phase = model.GamePhaseCharleston
	for i, pid := range ids {
		state.PlayerState(pid).Position = i
	}
	s.Require().NoError(s.storage.SaveGameState(s.ctx, state))
	return ids
}

// pass returns a distinct three-tile selection for a seat
func pass(seat int) []model.Tile {
	n := model.Tile(rune('1' + seat))
	return []model.Tile{n + "D", n + "C", n + "B"}
}

func (s *CharlestonSuite) TestFirstReadyOpensRightPass() {
	ids := s.startCharleston("ROOM22", 4)

	status, exchange, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[0], pass(0), "")
	s.Require().NoError(err)
	s.Nil(exchange)
	s.Equal(model.CharlestonRight, status.Phase)
	s.Equal(1, status.ReadyCount)
	s.Equal(4, status.Total)
	s.True(status.Ready[ids[0]])
	s.False(status.Ready[ids[1]])
}

func (s *CharlestonSuite) TestLastReadyExecutesRightExchange() {
	ids := s.startCharleston("ROOM22", 4)

	var exchange *ExchangeResult
	for i, id := range ids {
		var err error
		_, exchange, err = s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i), model.CharlestonRight)
		s.Require().NoError(err)
	}

	s.Require().NotNil(exchange)
	s.Equal(model.CharlestonRight, exchange.Phase)
	s.Equal(model.CharlestonAcross, exchange.NextPhase)

	// Passing right means each seat receives from the seat after it
	s.Equal(pass(1), exchange.TilesReceived[ids[0]])
	s.Equal(pass(2), exchange.TilesReceived[ids[1]])
	s.Equal(pass(3), exchange.TilesReceived[ids[2]])
	s.Equal(pass(0), exchange.TilesReceived[ids[3]])
}

func (s *CharlestonSuite) TestAcrossExchangeSwapsOppositeSeats() {
	ids := s.startCharleston("ROOM22", 4)

	for i, id := range ids {
		_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i), "")
		s.Require().NoError(err)
	}

	var exchange *ExchangeResult
	for i, id := range ids {
		var err error
		_, exchange, err = s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i), model.CharlestonAcross)
		s.Require().NoError(err)
	}

	s.Require().NotNil(exchange)
	s.Equal(pass(2), exchange.TilesReceived[ids[0]])
	s.Equal(pass(3), exchange.TilesReceived[ids[1]])
	s.Equal(pass(0), exchange.TilesReceived[ids[2]])
	s.Equal(pass(1), exchange.TilesReceived[ids[3]])
}

func (s *CharlestonSuite) TestLeftExchangeWrapsAround() {
	ids := s.startCharleston("ROOM22", 4)

	for _, phase := range []model.CharlestonPhase{model.CharlestonRight, model.CharlestonAcross} {
		for i, id := range ids {
			_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i), phase)
			s.Require().NoError(err)
		}
	}

	var exchange *ExchangeResult
	for i, id := range ids {
		var err error
		_, exchange, err = s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i), model.CharlestonLeft)
		s.Require().NoError(err)
	}

	s.Require().NotNil(exchange)
	s.Equal(model.CharlestonOptional, exchange.NextPhase)
	// Passing left means each seat receives from the seat before it
	s.Equal(pass(3), exchange.TilesReceived[ids[0]])
	s.Equal(pass(0), exchange.TilesReceived[ids[1]])
}

func (s *CharlestonSuite) TestFourPlayerOrderEndsComplete() {
	ids := s.startCharleston("ROOM22", 4)

	var last *ExchangeResult
	for _, phase := range model.CharlestonOrder(4)[:4] {
		for i, id := range ids {
			var err error
			_, last, err = s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i), phase)
			s.Require().NoError(err)
		}
	}

	s.Require().NotNil(last)
	s.Equal(model.CharlestonOptional, last.Phase)
	s.Equal(model.CharlestonComplete, last.NextPhase)

	// Further readies are rejected once the ritual is over
	_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[0], pass(0), "")
	s.ErrorIs(err, model.ErrPhase)
}

func (s *CharlestonSuite) TestThreePlayerOrderSkipsAcross() {
	ids := s.startCharleston("ROOM22", 3)

	seen := []model.CharlestonPhase{}
	for range model.CharlestonOrder(3)[:3] {
		var last *ExchangeResult
		for i, id := range ids {
			var err error
			_, last, err = s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i), "")
			s.Require().NoError(err)
		}
		s.Require().NotNil(last)
		seen = append(seen, last.Phase)
	}

	s.Equal([]model.CharlestonPhase{model.CharlestonRight, model.CharlestonLeft, model.CharlestonOptional}, seen)
	s.NotContains(seen, model.CharlestonAcross)

	status, err := s.coordinator.CharlestonStatus(s.ctx, "ROOM22")
	s.Require().NoError(err)
	s.Equal(model.CharlestonComplete, status.Phase)
}

func (s *CharlestonSuite) TestExchangeResetsSelectionsAndReadiness() {
	ids := s.startCharleston("ROOM22", 4)

	for i, id := range ids {
		_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i), "")
		s.Require().NoError(err)
	}

	state, _ := s.store.GetGameState(s.ctx, "ROOM22")
	for _, id := range ids {
		ps := state.PlayerStates[id]
		s.False(ps.IsReady)
		s.Nil(ps.SelectedTiles)
	}

	status, err := s.coordinator.CharlestonStatus(s.ctx, "ROOM22")
	s.Require().NoError(err)
	s.Equal(model.CharlestonAcross, status.Phase)
	s.Zero(status.ReadyCount)
}

func (s *CharlestonSuite) TestExactlyThreeTilesRequired() {
	ids := s.startCharleston("ROOM22", 4)

	_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[0], []model.Tile{"1D", "2D"}, "")
	s.ErrorIs(err, model.ErrValidation)

	_, _, err = s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[0], []model.Tile{"1D", "2D", "3D", "4D"}, "")
	s.ErrorIs(err, model.ErrValidation)
}

func (s *CharlestonSuite) TestStaleSubPhaseAssertionRejected() {
	ids := s.startCharleston("ROOM22", 4)

	_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[0], pass(0), model.CharlestonLeft)
	s.ErrorIs(err, model.ErrValidation)
}

func (s *CharlestonSuite) TestSpectatorCannotReady() {
	ids := s.startCharleston("ROOM22", 4)
	_ = ids

	_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", "watcher", pass(0), "")
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *CharlestonSuite) TestReadyOutsideCharlestonPhase() {
	ids := s.startCharleston("ROOM22", 4)

	state, _ := s.store.GetGameState(s.ctx, "ROOM22")
	state.Phase = model.GamePhasePlaying
	s.Require().NoError(s.storage.SaveGameState(s.ctx, state))

	_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[0], pass(0), "")
	s.ErrorIs(err, model.ErrPhase)
}

func (s *CharlestonSuite) TestReselectingBeforeCompletionOverwrites() {
	ids := s.startCharleston("ROOM22", 4)

	_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[0], pass(0), "")
	s.Require().NoError(err)
	replacement := []model.Tile{"9D", "9C", "9B"}
	_, _, err = s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[0], replacement, "")
	s.Require().NoError(err)

	var exchange *ExchangeResult
	for i, id := range ids[1:] {
		var err error
		_, exchange, err = s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", id, pass(i+1), "")
		s.Require().NoError(err)
	}

	s.Require().NotNil(exchange)
	// Seat 3 receives from seat 0, who re-picked
	s.Equal(replacement, exchange.TilesReceived[ids[3]])
}

// ForceCompletePhase tests

func (s *CharlestonSuite) TestForceCompleteDeliversEmptyForUnready() {
	ids := s.startCharleston("ROOM22", 4)

	_, _, err := s.coordinator.MarkPlayerReady(s.ctx, "ROOM22", ids[1], pass(1), "")
	s.Require().NoError(err)

	exchange, err := s.coordinator.ForceCompletePhase(s.ctx, "ROOM22")
	s.Require().NoError(err)
	s.Equal(model.CharlestonRight, exchange.Phase)
	s.Equal(model.CharlestonAcross, exchange.NextPhase)

	// Seat 0 receives seat 1's pass; everyone else gets nothing
	s.Equal(pass(1), exchange.TilesReceived[ids[0]])
	s.Empty(exchange.TilesReceived[ids[1]])
	s.Empty(exchange.TilesReceived[ids[2]])
	s.Empty(exchange.TilesReceived[ids[3]])
}

func (s *CharlestonSuite) TestForceCompleteBeforeAnyReady() {
	s.startCharleston("ROOM22", 4)

	// No sub-phase has opened yet
	_, err := s.coordinator.ForceCompletePhase(s.ctx, "ROOM22")
	s.ErrorIs(err, model.ErrPhase)
}

func (s *CharlestonSuite) TestForceCompleteOutsideCharleston() {
	s.startCharleston("ROOM22", 4)

	state, _ := s.store.GetGameState(s.ctx, "ROOM22")
	state.Phase = model.GamePhasePlaying
	s.Require().NoError(s.storage.SaveGameState(s.ctx, state))

	_, err := s.coordinator.ForceCompletePhase(s.ctx, "ROOM22")
	s.ErrorIs(err, model.ErrPhase)
}
