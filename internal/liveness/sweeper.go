package liveness

import (
	"context"
	"log/slog"
	"time"

	"github.com/openmahjong/lounge-go/internal/dependencies/clock"
	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/services/registry"
	"github.com/openmahjong/lounge-go/internal/ws"
)

const (
	DefaultSweepInterval = 5 * time.Minute
	DefaultIdleThreshold = 30 * time.Minute
)

// Sweeper periodically evicts rooms with no accepted mutation or
// membership change past the idle threshold, broadcasting a deletion
// notice per room and one room-list refresh per sweep. Room teardown
// itself, including game state and history, happens inside the registry.
type Sweeper struct {
	registry  registry.ControllerInterface
	hub       *ws.Hub
	clock     clock.Clock
	interval  time.Duration
	threshold time.Duration
	logger    *slog.Logger
}

// NewSweeper creates a new idle-room Sweeper. Non-positive durations
// fall back to the defaults.
func NewSweeper(
	reg registry.ControllerInterface,
	hub *ws.Hub,
	clk clock.Clock,
	interval, threshold time.Duration,
	logger *slog.Logger,
) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if threshold <= 0 {
		threshold = DefaultIdleThreshold
	}
	return &Sweeper{
		registry:  reg,
		hub:       hub,
		clock:     clk,
		interval:  interval,
		threshold: threshold,
		logger:    logger.With(slog.String("component", "liveness")),
	}
}

// Run sweeps on the configured interval until the context is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one eviction pass and returns the evicted room IDs
func (s *Sweeper) Sweep(ctx context.Context) []model.RoomID {
	evicted, err := s.registry.CleanupInactiveRooms(ctx, s.threshold)
	if err != nil {
		s.logger.Error("idle room sweep failed", slog.String("error", err.Error()))
		return nil
	}
	if len(evicted) == 0 {
		return nil
	}

	for _, roomID := range evicted {
		s.hub.BroadcastRoom(roomID, ws.ServerMessage{
			Type:      string(model.EventRoomDeleted),
			RoomID:    roomID,
			Timestamp: s.clock.Now(),
			Payload:   model.RoomDeletedPayload{Reason: "idle timeout"},
		})
		s.hub.DropRoom(roomID)
	}

	s.broadcastRoomList(ctx)

	s.logger.Info("idle rooms evicted", slog.Int("count", len(evicted)))
	return evicted
}

func (s *Sweeper) broadcastRoomList(ctx context.Context) {
	rooms, err := s.registry.GetPublicRooms(ctx)
	if err != nil {
		s.logger.Error("public room listing failed", slog.String("error", err.Error()))
		return
	}
	s.hub.BroadcastAll(ws.ServerMessage{
		Type:      string(model.EventRoomListUpdated),
		Timestamp: s.clock.Now(),
		Payload:   map[string]any{"rooms": rooms},
	})
}
