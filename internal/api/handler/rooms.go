package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openmahjong/lounge-go/internal/api/apierr"
	"github.com/openmahjong/lounge-go/internal/api/response"
	"github.com/openmahjong/lounge-go/internal/model"
	"github.com/openmahjong/lounge-go/internal/services/gamestate"
	"github.com/openmahjong/lounge-go/internal/services/registry"
)

// RoomHandler serves the read-only REST surface over rooms and game
// state. All mutation flows through the websocket gateway.
type RoomHandler struct {
	registry registry.ControllerInterface
	store    gamestate.StoreInterface
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(reg registry.ControllerInterface, store gamestate.StoreInterface) *RoomHandler {
	return &RoomHandler{
		registry: reg,
		store:    store,
	}
}

// List handles GET /rooms: public rooms only
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.registry.GetPublicRooms(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	out := response.RoomListResponse{Rooms: make([]response.RoomResponse, 0, len(rooms))}
	for _, room := range rooms {
		out.Rooms = append(out.Rooms, response.RoomFromModel(room))
	}
	response.JSON(w, http.StatusOK, out)
}

// Get handles GET /rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["id"])

	room, err := h.registry.GetRoom(r.Context(), roomID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}

// GetState handles GET /rooms/{id}/state
func (h *RoomHandler) GetState(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["id"])

	// 404 for unknown rooms rather than lazily creating state for them
	if _, err := h.registry.GetRoom(r.Context(), roomID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	state, err := h.store.GetGameState(r.Context(), roomID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromModel(state))
}

// GetHistory handles GET /rooms/{id}/history
func (h *RoomHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	roomID := model.RoomID(mux.Vars(r)["id"])

	if _, err := h.registry.GetRoom(r.Context(), roomID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	records, err := h.store.GetUpdateHistory(r.Context(), roomID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.HistoryFromModel(roomID, records))
}

// Stats handles GET /stats
func (h *RoomHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registry.GetStats(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatsFromModel(stats))
}
