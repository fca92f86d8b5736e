package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/openmahjong/lounge-go/internal/dependencies/clock"
	"github.com/openmahjong/lounge-go/internal/dependencies/random"
	"github.com/openmahjong/lounge-go/internal/liveness"
	"github.com/openmahjong/lounge-go/internal/services/gamestate"
	"github.com/openmahjong/lounge-go/internal/services/registry"
	"github.com/openmahjong/lounge-go/internal/services/scoring"
	"github.com/openmahjong/lounge-go/internal/services/turn"
	"github.com/openmahjong/lounge-go/internal/storage"
	"github.com/openmahjong/lounge-go/internal/storage/memory"
	redisstorage "github.com/openmahjong/lounge-go/internal/storage/redis"
	"github.com/openmahjong/lounge-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry    *registry.Controller
	Store       *gamestate.Store
	Evaluator   scoring.Evaluator
	Coordinator *turn.Coordinator

	// Transport
	Hub     *ws.Hub
	Gateway *ws.Gateway
	Sweeper *liveness.Sweeper
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// CharlestonTimeLimit force-advances a stuck exchange sub-phase
	// If zero, defaults to ws.DefaultCharlestonTimeLimit
	CharlestonTimeLimit time.Duration
	// SweepInterval and IdleThreshold drive idle-room eviction
	// If zero, liveness defaults apply
	SweepInterval time.Duration
	IdleThreshold time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *App {
	reg := registry.NewController(store, clk, rnd, logger)
	stateStore := gamestate.NewStore(store, clk, logger)
	evaluator := scoring.NewNMJLEvaluator(nil)
	coordinator := turn.NewCoordinator(store, stateStore, evaluator, clk, logger)
	hub := ws.NewHub(logger)
	gateway := ws.NewGateway(reg, stateStore, coordinator, hub, clk, cfg.CharlestonTimeLimit, logger)
	sweeper := liveness.NewSweeper(reg, hub, clk, cfg.SweepInterval, cfg.IdleThreshold, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Registry:    reg,
		Store:       stateStore,
		Evaluator:   evaluator,
		Coordinator: coordinator,
		Hub:         hub,
		Gateway:     gateway,
		Sweeper:     sweeper,
	}
}
