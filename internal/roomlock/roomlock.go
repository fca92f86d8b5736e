// Package roomlock provides named mutual exclusion over room ids so
// that every mutation touching one room runs its get-validate-apply-save
// sequence as a unit.
package roomlock

import (
	"sync"

	"github.com/openmahjong/lounge-go/internal/model"
)

// Locker hands out one mutex per room id. An entry is dropped as soon
// as no goroutine holds or awaits it, so the map tracks live contention
// rather than every room ever seen.
type Locker struct {
	mu    sync.Mutex
	rooms map[model.RoomID]*entry
}

type entry struct {
	mu      sync.Mutex
	holders int
}

// New creates an empty Locker
func New() *Locker {
	return &Locker{rooms: make(map[model.RoomID]*entry)}
}

// Lock acquires the mutex for a room and returns its release func.
// Different rooms never block each other.
func (l *Locker) Lock(id model.RoomID) func() {
	l.mu.Lock()
	e, ok := l.rooms[id]
	if !ok {
		e = &entry{}
		l.rooms[id] = e
	}
	e.holders++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.holders--
		if e.holders == 0 {
			delete(l.rooms, id)
		}
		l.mu.Unlock()
	}
}
