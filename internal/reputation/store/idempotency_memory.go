package store

import (
	"context"
	"sync"

	id "ria/pkg/domain"
)

// InMemoryLedger records claimed settlement keys for a single process.
type InMemoryLedger struct {
	mu   sync.Mutex
	keys map[string]id.ParticipantID
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{keys: make(map[string]id.ParticipantID)}
}

// Claim returns true only for the first caller presenting key.
func (l *InMemoryLedger) Claim(_ context.Context, key string, participantID id.ParticipantID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.keys[key]; ok {
		return false, nil
	}
	l.keys[key] = participantID
	return true, nil
}

// Release forgets a claim whose settlement could not be applied.
func (l *InMemoryLedger) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, key)
	return nil
}
