package roomlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesOneRoom(t *testing.T) {
	l := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("ROOM22")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestDifferentRoomsDoNotBlock(t *testing.T) {
	l := New()

	unlockA := l.Lock("ABC234")
	// Acquiring a second room while the first is held must not wait
	unlockB := l.Lock("DEF234")
	unlockB()
	unlockA()
}

func TestEntriesReleasedWhenIdle(t *testing.T) {
	l := New()

	unlock := l.Lock("ROOM22")
	assert.Len(t, l.rooms, 1)
	unlock()
	assert.Empty(t, l.rooms)
}
