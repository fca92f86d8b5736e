package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/openmahjong/lounge-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	cfg.StateTTL = time.Hour
	cfg.HistoryTTL = time.Hour
	cfg.IndexTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) room(id model.RoomID) *model.Room {
	return &model.Room{
		ID:     id,
		HostID: "host-1",
		Players: []model.Player{
			{ID: "host-1", Name: "Host", IsHost: true},
			{ID: "p2", Name: "Second"},
		},
		Spectators: []model.Player{},
		Config:     model.DefaultRoomConfig(),
		Phase:      model.RoomPhaseWaiting,
		CreatedAt:  time.Now().UTC(),
	}
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.room("ABC234")

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(room.ID, retrieved.ID)
	s.Equal(room.HostID, retrieved.HostID)
	s.Len(retrieved.Players, 2)
	s.True(retrieved.Players[0].IsHost)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE42")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExists() {
	_ = s.storage.SaveRoom(s.ctx, s.room("ABC234"))

	exists, err := s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.RoomExists(s.ctx, "NOPE42")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestDeleteRoomDropsIndexEntry() {
	_ = s.storage.SaveRoom(s.ctx, s.room("ABC234"))

	err := s.storage.DeleteRoom(s.ctx, "ABC234")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestListRooms() {
	_ = s.storage.SaveRoom(s.ctx, s.room("ABC234"))
	_ = s.storage.SaveRoom(s.ctx, s.room("DEF234"))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 2)
}

func (s *StorageSuite) TestListRoomsSkipsExpiredKeys() {
	_ = s.storage.SaveRoom(s.ctx, s.room("ABC234"))
	_ = s.storage.SaveRoom(s.ctx, s.room("DEF234"))

	// Simulate a room record expiring while its index entry survives
	s.mini.Del(roomKey("ABC234"))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 1)
	s.Equal(model.RoomID("DEF234"), rooms[0].ID)
}

func (s *StorageSuite) TestRoomTTL() {
	_ = s.storage.SaveRoom(s.ctx, s.room("ABC234"))

	ttl := s.mini.TTL(roomKey("ABC234"))
	s.True(ttl > 0, "Room should have TTL")
}

// Player index tests

func (s *StorageSuite) TestSetAndGetPlayerRoom() {
	err := s.storage.SetPlayerRoom(s.ctx, "p1", "ABC234")
	s.Require().NoError(err)

	roomID, err := s.storage.GetPlayerRoom(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.RoomID("ABC234"), roomID)
}

func (s *StorageSuite) TestGetPlayerRoomNotFound() {
	_, err := s.storage.GetPlayerRoom(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayerRoom() {
	_ = s.storage.SetPlayerRoom(s.ctx, "p1", "ABC234")

	err := s.storage.DeletePlayerRoom(s.ctx, "p1")
	s.Require().NoError(err)

	_, err = s.storage.GetPlayerRoom(s.ctx, "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Game state tests

func (s *StorageSuite) TestSaveAndGetGameState() {
	state := model.NewGameState("ABC234", time.Now().UTC())
	state.Phase = model.GamePhaseCharleston
	state.CharlestonPhase = model.CharlestonRight
	state.PlayerState("p1").SelectedTiles = []model.Tile{"1D", "2D", "3D"}
	state.Shared.CurrentPlayer = "p1"

	err := s.storage.SaveGameState(s.ctx, state)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGameState(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(model.GamePhaseCharleston, retrieved.Phase)
	s.Equal(model.CharlestonRight, retrieved.CharlestonPhase)
	s.Equal([]model.Tile{"1D", "2D", "3D"}, retrieved.PlayerStates["p1"].SelectedTiles)
	s.Equal(model.PlayerID("p1"), retrieved.Shared.CurrentPlayer)
}

func (s *StorageSuite) TestGetGameStateNotFound() {
	_, err := s.storage.GetGameState(s.ctx, "NOPE42")
	s.ErrorIs(err, model.ErrGameStateNotFound)
}

func (s *StorageSuite) TestDeleteGameState() {
	_ = s.storage.SaveGameState(s.ctx, model.NewGameState("ABC234", time.Now().UTC()))

	err := s.storage.DeleteGameState(s.ctx, "ABC234")
	s.Require().NoError(err)

	_, err = s.storage.GetGameState(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrGameStateNotFound)

	states, err := s.storage.ListGameStates(s.ctx)
	s.Require().NoError(err)
	s.Empty(states)
}

func (s *StorageSuite) TestListGameStates() {
	_ = s.storage.SaveGameState(s.ctx, model.NewGameState("ABC234", time.Now().UTC()))
	_ = s.storage.SaveGameState(s.ctx, model.NewGameState("DEF234", time.Now().UTC()))

	states, err := s.storage.ListGameStates(s.ctx)
	s.Require().NoError(err)
	s.Len(states, 2)
}

func (s *StorageSuite) TestStateTTL() {
	_ = s.storage.SaveGameState(s.ctx, model.NewGameState("ABC234", time.Now().UTC()))

	ttl := s.mini.TTL(stateKey("ABC234"))
	s.True(ttl > 0, "Game state should have TTL")
}

// Mutation history tests

func (s *StorageSuite) record(playerID model.PlayerID, count int) model.MutationRecord {
	return model.MutationRecord{
		Type:     model.UpdatePlayerState,
		PlayerID: playerID,
		Update: model.StateUpdate{
			Type:        model.UpdatePlayerState,
			PlayerState: &model.PlayerStateUpdate{HandTileCount: &count},
		},
		Timestamp: time.Now().UTC(),
	}
}

func (s *StorageSuite) TestAppendAndGetMutationsOldestFirst() {
	_ = s.storage.AppendMutation(s.ctx, "ABC234", s.record("p1", 1))
	_ = s.storage.AppendMutation(s.ctx, "ABC234", s.record("p2", 2))

	history, err := s.storage.GetMutationHistory(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(model.PlayerID("p1"), history[0].PlayerID)
	s.Equal(model.PlayerID("p2"), history[1].PlayerID)
}

func (s *StorageSuite) TestMutationHistoryIsBounded() {
	for i := 0; i < model.MutationHistoryLimit+5; i++ {
		err := s.storage.AppendMutation(s.ctx, "ABC234", s.record("p1", i))
		s.Require().NoError(err)
	}

	history, err := s.storage.GetMutationHistory(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Len(history, model.MutationHistoryLimit)
	s.Equal(5, *history[0].Update.PlayerState.HandTileCount)
}

func (s *StorageSuite) TestDeleteMutationHistory() {
	_ = s.storage.AppendMutation(s.ctx, "ABC234", s.record("p1", 1))

	err := s.storage.DeleteMutationHistory(s.ctx, "ABC234")
	s.Require().NoError(err)

	history, err := s.storage.GetMutationHistory(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *StorageSuite) TestHistoryTTL() {
	_ = s.storage.AppendMutation(s.ctx, "ABC234", s.record("p1", 1))

	ttl := s.mini.TTL(historyKey("ABC234"))
	s.True(ttl > 0, "History should have TTL")
}
