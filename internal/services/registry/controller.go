package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openmahjong/lounge-go/internal/dependencies/clock"
	"github.com/openmahjong/lounge-go/internal/dependencies/random"
	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/roomlock"
	"github.com/openmahjong/lounge-go/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller owns the set of active rooms and the player-to-room index.
// It creates rooms, enforces capacity and per-host quotas, routes
// join/leave, and performs idle-room eviction. Membership mutations for
// one room run under that room's lock, so concurrent joins and leaves
// apply one at a time.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	locks   *roomlock.Locker
	logger  *slog.Logger
}

// NewController creates a new registry Controller
func NewController(storage storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clk,
		random:  rnd,
		locks:   roomlock.New(),
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// LeaveResult reports what a LeaveRoom call actually did
type LeaveResult struct {
	Removed     bool
	RoomDeleted bool
	NewHostID   model.PlayerID // empty when the host did not change
	Room        *model.Room    // nil when the room was deleted
}

// Stats is a snapshot of registry-wide counters
type Stats struct {
	TotalRooms   int
	TotalPlayers int
	RoomsByPhase map[model.RoomPhase]int
}

// CreateRoom creates a room with the given player as host and first member
func (c *Controller) CreateRoom(ctx context.Context, host model.Player, cfg model.RoomConfig) (*model.Room, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	// A player can only be in one room at a time, host included
	if _, err := c.storage.GetPlayerRoom(ctx, host.ID); err == nil {
		return nil, model.ErrAlreadyInRoom
	}

	// Per-host quota
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	hosted := 0
	for _, r := range rooms {
		if r.HostID == host.ID {
			hosted++
		}
	}
	if hosted >= model.MaxRoomsPerHost {
		return nil, fmt.Errorf("%w: host %s already has %d rooms", model.ErrQuotaExceeded, host.ID, hosted)
	}

	// Draw codes until one misses the live registry, holding the drawn
	// code's lock from the miss through the save so a concurrent create
	// cannot claim it in between. Collisions are rare in practice.
	var id model.RoomID
	var unlock func()
	for {
		id = model.RoomID(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		unlock = c.locks.Lock(id)
		exists, err := c.storage.RoomExists(ctx, id)
		if err != nil {
			unlock()
			return nil, err
		}
		if !exists {
			break
		}
		unlock()
	}
	defer unlock()

	now := c.clock.Now()
	host.IsHost = true
	host.JoinedAt = now

	room := &model.Room{
		ID:           id,
		HostID:       host.ID,
		Players:      []model.Player{host},
		Spectators:   []model.Player{},
		Config:       cfg,
		Phase:        model.RoomPhaseWaiting,
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	if err := c.storage.SetPlayerRoom(ctx, host.ID, id); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.String("host_id", string(host.ID)),
		slog.Int("max_players", cfg.MaxPlayers),
	)

	return room, nil
}

// JoinRoom adds a player to a room. Once the room has left the lobby, or
// when every seat is taken, the player is admitted as a spectator instead
// if the room allows it.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, player model.Player) (*model.Room, error) {
	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if _, err := c.storage.GetPlayerRoom(ctx, player.ID); err == nil {
		return nil, model.ErrAlreadyInRoom
	}

	now := c.clock.Now()
	player.IsHost = false
	player.JoinedAt = now

	asSpectator := false
	switch {
	case room.Phase != model.RoomPhaseWaiting:
		// No late seat joins once the game has left the lobby
		if !room.Config.AllowSpectators {
			return nil, fmt.Errorf("%w: room %s is %s", model.ErrPhase, roomID, room.Phase)
		}
		asSpectator = true
	case room.IsFull():
		if !room.Config.AllowSpectators {
			return nil, model.ErrRoomFull
		}
		asSpectator = true
	}

	if asSpectator {
		if len(room.Spectators) >= model.MaxSpectators {
			return nil, model.ErrRoomFull
		}
		room.Spectators = append(room.Spectators, player)
	} else {
		room.Players = append(room.Players, player)
	}
	room.LastActivity = now

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	if err := c.storage.SetPlayerRoom(ctx, player.ID, roomID); err != nil {
		return nil, err
	}

	c.logger.Info("player joined",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(player.ID)),
		slog.Bool("spectator", asSpectator),
	)

	return room, nil
}

// LeaveRoom removes a player from a room. Not-present is not an error:
// disconnect-driven calls may race with an already-completed leave, and
// the second call must stay idempotent. The last seated player leaving
// destroys the room.
func (c *Controller) LeaveRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*LeaveResult, error) {
	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return &LeaveResult{}, nil
		}
		return nil, err
	}

	removed := false
	wasHost := false
	for i, p := range room.Players {
		if p.ID == playerID {
			wasHost = p.IsHost
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		for i, sp := range room.Spectators {
			if sp.ID == playerID {
				room.Spectators = append(room.Spectators[:i], room.Spectators[i+1:]...)
				removed = true
				break
			}
		}
		if removed {
			// Spectator departures never affect hosting or room lifetime
			room.LastActivity = c.clock.Now()
			if err := c.storage.DeletePlayerRoom(ctx, playerID); err != nil {
				return nil, err
			}
			if err := c.storage.SaveRoom(ctx, room); err != nil {
				return nil, err
			}
			return &LeaveResult{Removed: true, Room: room}, nil
		}
		return &LeaveResult{}, nil
	}

	if err := c.storage.DeletePlayerRoom(ctx, playerID); err != nil {
		return nil, err
	}

	if len(room.Players) == 0 {
		if err := c.purgeRoom(ctx, room); err != nil {
			return nil, err
		}
		c.logger.Info("room deleted, last player left", slog.String("room_id", string(roomID)))
		return &LeaveResult{Removed: true, RoomDeleted: true}, nil
	}

	var newHost model.PlayerID
	if wasHost {
		// Earliest remaining joiner becomes host: stable and deterministic
		room.Players[0].IsHost = true
		room.HostID = room.Players[0].ID
		newHost = room.HostID
		c.logger.Info("host reassigned",
			slog.String("room_id", string(roomID)),
			slog.String("new_host", string(newHost)),
		)
	}

	room.LastActivity = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	return &LeaveResult{Removed: true, NewHostID: newHost, Room: room}, nil
}

// DeleteRoom removes a room and purges every member from the index.
// Returns false when the room was already gone.
func (c *Controller) DeleteRoom(ctx context.Context, roomID model.RoomID) (bool, error) {
	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := c.purgeRoom(ctx, room); err != nil {
		return false, err
	}
	return true, nil
}

// purgeRoom deletes the room record, its game state and history, and
// every member's index entry in one logical step.
func (c *Controller) purgeRoom(ctx context.Context, room *model.Room) error {
	for _, id := range room.MemberIDs() {
		if err := c.storage.DeletePlayerRoom(ctx, id); err != nil {
			return err
		}
	}
	if err := c.storage.DeleteGameState(ctx, room.ID); err != nil {
		return err
	}
	if err := c.storage.DeleteMutationHistory(ctx, room.ID); err != nil {
		return err
	}
	return c.storage.DeleteRoom(ctx, room.ID)
}

// CleanupInactiveRooms deletes every room idle longer than threshold and
// returns the deleted ids for caller-side broadcast.
func (c *Controller) CleanupInactiveRooms(ctx context.Context, threshold time.Duration) ([]model.RoomID, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	var deleted []model.RoomID
	for _, room := range rooms {
		if now.Sub(room.LastActivity) <= threshold {
			continue
		}
		evicted, err := c.evictIfStillIdle(ctx, room.ID, now, threshold)
		if err != nil {
			return deleted, err
		}
		if evicted {
			deleted = append(deleted, room.ID)
		}
	}

	if len(deleted) > 0 {
		c.logger.Info("inactive rooms evicted", slog.Int("count", len(deleted)))
	}
	return deleted, nil
}

// evictIfStillIdle re-checks a sweep candidate under its room lock; a
// join or touch may have landed since the unlocked listing.
func (c *Controller) evictIfStillIdle(ctx context.Context, roomID model.RoomID, now time.Time, threshold time.Duration) (bool, error) {
	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return false, nil
		}
		return false, err
	}
	if now.Sub(room.LastActivity) <= threshold {
		return false, nil
	}
	if err := c.purgeRoom(ctx, room); err != nil {
		return false, err
	}
	return true, nil
}

// TouchRoom bumps a room's LastActivity; called on every accepted mutation
func (c *Controller) TouchRoom(ctx context.Context, roomID model.RoomID) error {
	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	room.LastActivity = c.clock.Now()
	return c.storage.SaveRoom(ctx, room)
}

// SetRoomPhase moves the room-level lifecycle phase
func (c *Controller) SetRoomPhase(ctx context.Context, roomID model.RoomID, phase model.RoomPhase) error {
	unlock := c.locks.Lock(roomID)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	room.Phase = phase
	room.LastActivity = c.clock.Now()
	return c.storage.SaveRoom(ctx, room)
}

// Query operations: pure reads, no side effects

// GetRoom retrieves a room by id
func (c *Controller) GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	return c.storage.GetRoom(ctx, roomID)
}

// GetPublicRooms lists rooms visible in the public room browser
func (c *Controller) GetPublicRooms(ctx context.Context) ([]*model.Room, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	public := make([]*model.Room, 0, len(rooms))
	for _, r := range rooms {
		if !r.Config.IsPrivate {
			public = append(public, r)
		}
	}
	return public, nil
}

// GetPlayerRoom resolves the room a player currently belongs to
func (c *Controller) GetPlayerRoom(ctx context.Context, playerID model.PlayerID) (*model.Room, error) {
	roomID, err := c.storage.GetPlayerRoom(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return c.storage.GetRoom(ctx, roomID)
}

// IsPlayerInRoom reports whether the player is indexed into any room
func (c *Controller) IsPlayerInRoom(ctx context.Context, playerID model.PlayerID) bool {
	_, err := c.storage.GetPlayerRoom(ctx, playerID)
	return err == nil
}

// GetStats returns registry-wide counters
func (c *Controller) GetStats(ctx context.Context) (*Stats, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{RoomsByPhase: make(map[model.RoomPhase]int)}
	stats.TotalRooms = len(rooms)
	for _, r := range rooms {
		stats.TotalPlayers += len(r.Players)
		stats.RoomsByPhase[r.Phase]++
	}
	return stats, nil
}

func validateConfig(cfg model.RoomConfig) error {
	if cfg.MaxPlayers < model.MinRoomPlayers || cfg.MaxPlayers > model.MaxRoomPlayers {
		return fmt.Errorf("%w: maxPlayers must be between %d and %d",
			model.ErrValidation, model.MinRoomPlayers, model.MaxRoomPlayers)
	}
	if len(cfg.RoomName) > model.MaxRoomNameLength {
		return fmt.Errorf("%w: roomName exceeds %d characters", model.ErrValidation, model.MaxRoomNameLength)
	}
	known := false
	for _, m := range model.KnownGameModes {
		if cfg.GameMode == m {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown gameMode %q", model.ErrValidation, cfg.GameMode)
	}
	return nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, host model.Player, cfg model.RoomConfig) (*model.Room, error)
	JoinRoom(ctx context.Context, roomID model.RoomID, player model.Player) (*model.Room, error)
	LeaveRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*LeaveResult, error)
	DeleteRoom(ctx context.Context, roomID model.RoomID) (bool, error)
	CleanupInactiveRooms(ctx context.Context, threshold time.Duration) ([]model.RoomID, error)
	TouchRoom(ctx context.Context, roomID model.RoomID) error
	SetRoomPhase(ctx context.Context, roomID model.RoomID, phase model.RoomPhase) error
	GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error)
	GetPublicRooms(ctx context.Context) ([]*model.Room, error)
	GetPlayerRoom(ctx context.Context, playerID model.PlayerID) (*model.Room, error)
	IsPlayerInRoom(ctx context.Context, playerID model.PlayerID) bool
	GetStats(ctx context.Context) (*Stats, error)
}

var _ ControllerInterface = (*Controller)(nil)
