package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openmahjong/lounge-go/internal/api/handler"
	"github.com/openmahjong/lounge-go/internal/api/middleware"
	"github.com/openmahjong/lounge-go/internal/services/gamestate"
	"github.com/openmahjong/lounge-go/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Registry registry.ControllerInterface
	Store    gamestate.StoreInterface
	// Gateway is the websocket endpoint mounted at /ws
	Gateway http.Handler
}

// NewRouter creates a new API router with all routes configured.
// The REST surface is read-only; mutation goes through the gateway.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.Store)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/state", roomHandler.GetState).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}/history", roomHandler.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/stats", roomHandler.Stats).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.Gateway != nil {
		r.Handle("/ws", cfg.Gateway)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
