package redis

import (
	"fmt"

	"github.com/openmahjong/lounge-go/internal/model"
)

// Key prefix for all lounge data
const keyPrefix = "lounge"

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomSetKey returns the Redis key for the SET of live room ids
func roomSetKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// playerRoomKey returns the Redis key for the player -> room index
func playerRoomKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_room:%s", keyPrefix, id)
}

// stateKey returns the Redis key for a GameState
func stateKey(id model.RoomID) string {
	return fmt.Sprintf("%s:state:%s", keyPrefix, id)
}

// stateSetKey returns the Redis key for the SET of rooms with state
func stateSetKey() string {
	return fmt.Sprintf("%s:idx:states", keyPrefix)
}

// historyKey returns the Redis key for a room's mutation history list
func historyKey(id model.RoomID) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, id)
}
