package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. Rooms and their game state are kept alive while the
	// room is active; the sweeper owns logical eviction, TTLs are a
	// backstop against leaked keys.
	RoomTTL    time.Duration
	StateTTL   time.Duration
	HistoryTTL time.Duration
	IndexTTL   time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		RoomTTL:      24 * time.Hour,
		StateTTL:     24 * time.Hour,
		HistoryTTL:   24 * time.Hour,
		IndexTTL:     24 * time.Hour,
	}
}
