package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Pipeline keeps the room record and the live-room set in step
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomSetKey(), string(room.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.SRem(ctx, roomSetKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	ids, err := s.client.SMembers(ctx, roomSetKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Room{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = roomKey(model.RoomID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Room key expired out from under the index
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}

// Player-to-room index operations

func (s *Storage) SetPlayerRoom(ctx context.Context, playerID model.PlayerID, roomID model.RoomID) error {
	return s.client.Set(ctx, playerRoomKey(playerID), string(roomID), s.cfg.IndexTTL).Err()
}

func (s *Storage) GetPlayerRoom(ctx context.Context, playerID model.PlayerID) (model.RoomID, error) {
	roomID, err := s.client.Get(ctx, playerRoomKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrPlayerNotFound
		}
		return "", err
	}
	return model.RoomID(roomID), nil
}

func (s *Storage) DeletePlayerRoom(ctx context.Context, playerID model.PlayerID) error {
	return s.client.Del(ctx, playerRoomKey(playerID)).Err()
}

// Game state operations

func (s *Storage) SaveGameState(ctx context.Context, state *model.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, stateKey(state.RoomID), data, s.cfg.StateTTL)
	pipe.SAdd(ctx, stateSetKey(), string(state.RoomID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGameState(ctx context.Context, roomID model.RoomID) (*model.GameState, error) {
	data, err := s.client.Get(ctx, stateKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameStateNotFound
		}
		return nil, err
	}

	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Storage) DeleteGameState(ctx context.Context, roomID model.RoomID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, stateKey(roomID))
	pipe.SRem(ctx, stateSetKey(), string(roomID))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGameStates(ctx context.Context) ([]*model.GameState, error) {
	ids, err := s.client.SMembers(ctx, stateSetKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.GameState{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = stateKey(model.RoomID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	states := make([]*model.GameState, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var state model.GameState
		if err := json.Unmarshal([]byte(val.(string)), &state); err != nil {
			continue
		}
		states = append(states, &state)
	}

	return states, nil
}

// Mutation history operations

func (s *Storage) AppendMutation(ctx context.Context, roomID model.RoomID, rec model.MutationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := historyKey(roomID)

	// LPUSH + LTRIM keeps the newest MutationHistoryLimit records
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(model.MutationHistoryLimit-1))
	pipe.Expire(ctx, key, s.cfg.HistoryTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMutationHistory(ctx context.Context, roomID model.RoomID) ([]model.MutationRecord, error) {
	values, err := s.client.LRange(ctx, historyKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	// LPUSH stores newest-first; return oldest-first like the memory backend
	records := make([]model.MutationRecord, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		var rec model.MutationRecord
		if err := json.Unmarshal([]byte(values[i]), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Storage) DeleteMutationHistory(ctx context.Context, roomID model.RoomID) error {
	return s.client.Del(ctx, historyKey(roomID)).Err()
}
