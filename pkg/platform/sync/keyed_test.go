package sync

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_LockUnlock(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("key1")
	m.Unlock("key1")

	m.Lock("")
	m.Unlock("")

	assert.Equal(t, 0, m.Held(), "entries are released after unlock")
}

func TestKeyedMutex_SameKeySerializes(t *testing.T) {
	m := NewKeyedMutex()
	counter := 0
	var wg sync.WaitGroup

	for range 100 {
		wg.Go(func() {
			m.Lock("same-key")
			defer m.Unlock("same-key")
			counter++
		})
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Equal(t, 0, m.Held())
}

func TestKeyedMutex_DifferentKeysIndependent(t *testing.T) {
	m := NewKeyedMutex()

	m.Lock("a")
	defer m.Unlock("a")

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		m.Lock("b")
		acquired.Store(true)
		m.Unlock("b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	assert.True(t, acquired.Load())
}

func TestKeyedMutex_UnlockWithoutLockPanics(t *testing.T) {
	m := NewKeyedMutex()
	assert.Panics(t, func() { m.Unlock("never-locked") })
}
