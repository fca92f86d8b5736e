package ws

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/services/turn"
)

func (g *Gateway) handlePing(client *Client, msg *ClientMessage) {
	req, err := decode[PingRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	client.Send(ServerMessage{
		Type:      MessagePong,
		RequestID: msg.RequestID,
		Timestamp: g.clock.Now(),
		Payload:   PongResponse{Timestamp: req.Timestamp},
	})
}

func (g *Gateway) handleCreateRoom(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[CreateRoomRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if req.HostName == "" {
		g.nack(client, msg, "", fmt.Errorf("%w: hostName must not be empty", model.ErrValidation))
		return
	}

	cfg := model.DefaultRoomConfig()
	if c := req.Config; c != nil {
		if c.MaxPlayers != nil {
			cfg.MaxPlayers = *c.MaxPlayers
		}
		if c.IsPrivate != nil {
			cfg.IsPrivate = *c.IsPrivate
		}
		if c.RoomName != nil {
			cfg.RoomName = *c.RoomName
		}
		if c.GameMode != nil {
			cfg.GameMode = *c.GameMode
		}
		if c.AllowSpectators != nil {
			cfg.AllowSpectators = *c.AllowSpectators
		}
	}

	room, err := g.registry.CreateRoom(ctx, model.Player{ID: client.PlayerID, Name: req.HostName}, cfg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}

	g.hub.Subscribe(client, room.ID)
	g.ack(client, msg, room.ID, room)
	g.broadcastRoomList(ctx)
}

func (g *Gateway) handleJoinRoom(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[JoinRoomRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if req.PlayerName == "" {
		g.nack(client, msg, req.RoomID, fmt.Errorf("%w: playerName must not be empty", model.ErrValidation))
		return
	}

	room, err := g.registry.JoinRoom(ctx, req.RoomID, model.Player{ID: client.PlayerID, Name: req.PlayerName})
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}

	g.hub.Subscribe(client, room.ID)
	g.ack(client, msg, room.ID, room)

	joined := room.GetPlayer(client.PlayerID)
	isSpectator := joined == nil
	if isSpectator {
		joined = room.GetSpectator(client.PlayerID)
	}
	g.hub.BroadcastRoomExcept(room.ID, ServerMessage{
		Type:      string(model.EventPlayerJoined),
		RoomID:    room.ID,
		Timestamp: g.clock.Now(),
		Payload:   model.PlayerJoinedPayload{Player: *joined, IsSpectator: isSpectator},
	}, client.PlayerID)
	g.broadcastRoomList(ctx)
}

func (g *Gateway) handleLeaveRoom(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[LeaveRoomRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}

	removed, err := g.departRoom(ctx, req.RoomID, client.PlayerID)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.hub.Unsubscribe(client, req.RoomID)
	g.ack(client, msg, req.RoomID, map[string]bool{"removed": removed})
}

// departRoom runs the shared leave cascade for explicit leaves and
// disconnects: registry removal, membership broadcasts, stale sub-state
// purge, then the global room-list refresh.
func (g *Gateway) departRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (bool, error) {
	name := ""
	if room, err := g.registry.GetRoom(ctx, roomID); err == nil {
		if p := room.GetPlayer(playerID); p != nil {
			name = p.Name
		} else if sp := room.GetSpectator(playerID); sp != nil {
			name = sp.Name
		}
	}

	result, err := g.registry.LeaveRoom(ctx, roomID, playerID)
	if err != nil {
		return false, err
	}
	if !result.Removed {
		return false, nil
	}

	if result.RoomDeleted {
		g.broadcast(roomID, model.EventRoomDeleted, model.RoomDeletedPayload{Reason: "room empty"})
		g.hub.DropRoom(roomID)
		g.cancelCharlestonTimer(roomID)
	} else {
		g.broadcast(roomID, model.EventPlayerLeft, model.PlayerLeftPayload{
			PlayerID:  playerID,
			Name:      name,
			NewHostID: result.NewHostID,
		})
		if result.NewHostID != "" {
			g.broadcast(roomID, model.EventHostChanged, map[string]model.PlayerID{"hostId": result.NewHostID})
		}
	}

	if err := g.store.CleanupPlayerState(ctx, playerID); err != nil {
		g.logger.Error("player state cleanup failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
	}

	g.broadcastRoomList(ctx)
	return true, nil
}

func (g *Gateway) handleDisconnect(ctx context.Context, client *Client) {
	room, err := g.registry.GetPlayerRoom(ctx, client.PlayerID)
	if err != nil {
		// Not in any room; nothing to cascade
		return
	}
	if _, err := g.departRoom(ctx, room.ID, client.PlayerID); err != nil {
		g.logger.Error("disconnect cascade failed",
			slog.String("player_id", string(client.PlayerID)),
			slog.String("room_id", string(room.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func (g *Gateway) handleStateUpdate(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[StateUpdateRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if _, err := g.seatedRoom(ctx, client, req.RoomID); err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}

	state, err := g.store.ProcessUpdate(ctx, req.RoomID, client.PlayerID, req.Update)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.touch(ctx, req.RoomID)
	g.ack(client, msg, req.RoomID, state)

	g.hub.BroadcastRoomExcept(req.RoomID, ServerMessage{
		Type:      string(model.EventGameStateChanged),
		RoomID:    req.RoomID,
		Timestamp: g.clock.Now(),
		Payload:   model.GameStateChangedPayload{State: state, Update: req.Update},
	}, client.PlayerID)

	if req.Update.Type == model.UpdatePhaseChange && req.Update.PhaseChange != nil {
		switch req.Update.PhaseChange.Phase {
		case model.GamePhaseCharleston:
			g.scheduleCharlestonTimer(req.RoomID)
		default:
			g.cancelCharlestonTimer(req.RoomID)
		}
	}
}

func (g *Gateway) handleGameState(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[GameStateRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if _, err := g.memberRoom(ctx, client, req.RoomID); err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	state, err := g.store.GetGameState(ctx, req.RoomID)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.ack(client, msg, req.RoomID, state)
}

func (g *Gateway) handleSyncState(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[SyncStateRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if _, err := g.seatedRoom(ctx, client, req.RoomID); err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}

	state, err := g.store.SyncGameState(ctx, req.RoomID, req.State)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.touch(ctx, req.RoomID)
	g.ack(client, msg, req.RoomID, state)

	g.hub.BroadcastRoomExcept(req.RoomID, ServerMessage{
		Type:      string(model.EventGameStateChanged),
		RoomID:    req.RoomID,
		Timestamp: g.clock.Now(),
		Payload:   model.GameStateChangedPayload{State: state},
	}, client.PlayerID)
}

func (g *Gateway) handleCharlestonReady(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[CharlestonReadyRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}

	status, exchange, err := g.coordinator.MarkPlayerReady(ctx, req.RoomID, client.PlayerID, req.SelectedTiles, req.Phase)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.touch(ctx, req.RoomID)
	g.ack(client, msg, req.RoomID, status)

	g.broadcast(req.RoomID, model.EventCharlestonReadyUpdate, model.CharlestonReadyPayload{
		Phase:      status.Phase,
		ReadyCount: status.ReadyCount,
		Total:      status.Total,
		PlayerID:   client.PlayerID,
	})

	if exchange != nil {
		g.deliverExchange(req.RoomID, exchange)
	}
}

func (g *Gateway) handleCharlestonStatus(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[CharlestonStatusRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if _, err := g.memberRoom(ctx, client, req.RoomID); err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	status, err := g.coordinator.CharlestonStatus(ctx, req.RoomID)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.ack(client, msg, req.RoomID, status)
}

func (g *Gateway) handleTurnStartGame(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[TurnStartGameRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	room, err := g.seatedRoom(ctx, client, req.RoomID)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	if room.HostID != client.PlayerID {
		g.nack(client, msg, req.RoomID, fmt.Errorf("%w: only the host may start the game", model.ErrNotHost))
		return
	}

	state, err := g.coordinator.StartGame(ctx, req.RoomID, req.FirstPlayer, req.TurnOrder)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	if err := g.registry.SetRoomPhase(ctx, req.RoomID, model.RoomPhasePlaying); err != nil {
		g.logger.Error("room phase update failed",
			slog.String("room_id", string(req.RoomID)),
			slog.String("error", err.Error()),
		)
	}
	g.touch(ctx, req.RoomID)
	g.cancelCharlestonTimer(req.RoomID)
	g.ack(client, msg, req.RoomID, state)

	g.broadcast(req.RoomID, model.EventTurnUpdate, model.TurnUpdatePayload{
		CurrentPlayer: state.Shared.CurrentPlayer,
		TurnNumber:    1,
		RoundNumber:   state.CurrentRound,
		CurrentWind:   state.CurrentWind,
	})
	g.hub.BroadcastRoomExcept(req.RoomID, ServerMessage{
		Type:      string(model.EventGameStateChanged),
		RoomID:    req.RoomID,
		Timestamp: g.clock.Now(),
		Payload:   model.GameStateChangedPayload{State: state},
	}, client.PlayerID)
}

func (g *Gateway) handleTurnAdvance(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[TurnAdvanceRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if _, err := g.seatedRoom(ctx, client, req.RoomID); err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	// Identity is connection-bound: a client may only advance its own turn
	if req.CurrentPlayerID != client.PlayerID {
		g.nack(client, msg, req.RoomID, fmt.Errorf("%w: cannot advance another player's turn", model.ErrNotYourTurn))
		return
	}

	status, err := g.coordinator.AdvanceTurn(ctx, req.RoomID, req.CurrentPlayerID, req.NextPlayerID, req.TurnNumber)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.touch(ctx, req.RoomID)
	g.ack(client, msg, req.RoomID, status)

	g.broadcast(req.RoomID, model.EventTurnUpdate, model.TurnUpdatePayload{
		CurrentPlayer: status.CurrentPlayer,
		TurnNumber:    status.TurnNumber,
		RoundNumber:   status.RoundNumber,
		CurrentWind:   status.CurrentWind,
	})
}

func (g *Gateway) handleTurnStatus(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[TurnStatusRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if _, err := g.memberRoom(ctx, client, req.RoomID); err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	status, err := g.coordinator.Status(ctx, req.RoomID)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.ack(client, msg, req.RoomID, status)
}

func (g *Gateway) handleDeclareMahjong(ctx context.Context, client *Client, msg *ClientMessage) {
	req, err := decode[DeclareMahjongRequest](msg)
	if err != nil {
		g.nack(client, msg, "", err)
		return
	}
	if _, err := g.seatedRoom(ctx, client, req.RoomID); err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}

	result, err := g.coordinator.DeclareMahjong(ctx, req.RoomID, client.PlayerID, req.Hand, req.Pattern)
	if err != nil {
		g.nack(client, msg, req.RoomID, err)
		return
	}
	g.touch(ctx, req.RoomID)
	g.ack(client, msg, req.RoomID, result)

	if !result.Valid {
		return
	}
	if err := g.registry.SetRoomPhase(ctx, req.RoomID, model.RoomPhaseScoring); err != nil {
		g.logger.Error("room phase update failed",
			slog.String("room_id", string(req.RoomID)),
			slog.String("error", err.Error()),
		)
	}
	state, err := g.store.GetGameState(ctx, req.RoomID)
	if err != nil {
		return
	}
	g.hub.BroadcastRoomExcept(req.RoomID, ServerMessage{
		Type:      string(model.EventGameStateChanged),
		RoomID:    req.RoomID,
		Timestamp: g.clock.Now(),
		Payload:   model.GameStateChangedPayload{State: state},
	}, client.PlayerID)
}

// deliverExchange routes each recipient's received tiles to them alone
// and manages the sub-phase timer.
func (g *Gateway) deliverExchange(roomID model.RoomID, exchange *turn.ExchangeResult) {
	for playerID, tiles := range exchange.TilesReceived {
		g.hub.SendToPlayer(playerID, ServerMessage{
			Type:      string(model.EventCharlestonExchange),
			RoomID:    roomID,
			Timestamp: g.clock.Now(),
			Payload: model.CharlestonExchangePayload{
				Phase:         exchange.Phase,
				NextPhase:     exchange.NextPhase,
				TilesReceived: tiles,
			},
		})
	}

	if exchange.NextPhase == model.CharlestonComplete {
		g.cancelCharlestonTimer(roomID)
	} else {
		g.scheduleCharlestonTimer(roomID)
	}
}

func (g *Gateway) touch(ctx context.Context, roomID model.RoomID) {
	if err := g.registry.TouchRoom(ctx, roomID); err != nil {
		g.logger.Warn("room activity touch failed",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
	}
}

func (g *Gateway) broadcastRoomList(ctx context.Context) {
	rooms, err := g.registry.GetPublicRooms(ctx)
	if err != nil {
		g.logger.Error("public room listing failed", slog.String("error", err.Error()))
		return
	}
	g.hub.BroadcastAll(ServerMessage{
		Type:      string(model.EventRoomListUpdated),
		Timestamp: g.clock.Now(),
		Payload:   map[string]any{"rooms": rooms},
	})
}

// scheduleCharlestonTimer arms or rearms the force-advance timer for a
// room's current exchange sub-phase.
func (g *Gateway) scheduleCharlestonTimer(roomID model.RoomID) {
	g.timersMu.Lock()
	defer g.timersMu.Unlock()
	if t, ok := g.timers[roomID]; ok {
		t.Stop()
	}
	g.timers[roomID] = time.AfterFunc(g.charlestonLimit, func() {
		g.onCharlestonTimeout(roomID)
	})
}

func (g *Gateway) cancelCharlestonTimer(roomID model.RoomID) {
	g.timersMu.Lock()
	defer g.timersMu.Unlock()
	if t, ok := g.timers[roomID]; ok {
		t.Stop()
		delete(g.timers, roomID)
	}
}

// onCharlestonTimeout force-completes a stuck sub-phase through the
// same coordinator path a client-triggered completion takes.
func (g *Gateway) onCharlestonTimeout(roomID model.RoomID) {
	ctx := context.Background()

	exchange, err := g.coordinator.ForceCompletePhase(ctx, roomID)
	if err != nil {
		g.cancelCharlestonTimer(roomID)
		g.broadcast(roomID, model.EventCharlestonError, map[string]string{
			"message": err.Error(),
		})
		return
	}
	g.touch(ctx, roomID)
	g.deliverExchange(roomID, exchange)
}
