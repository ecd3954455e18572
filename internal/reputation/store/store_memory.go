package store

import (
	"context"
	"sync"

	"ria/internal/reputation/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
	keyed "ria/pkg/platform/sync"
)

// InMemoryStore keeps participants in memory. Execute serializes per
// participant; different participants never contend.
type InMemoryStore struct {
	mu           sync.RWMutex
	participants map[id.ParticipantID]*models.Participant
	locks        *keyed.KeyedMutex
}

func New() *InMemoryStore {
	return &InMemoryStore{
		participants: make(map[id.ParticipantID]*models.Participant),
		locks:        keyed.NewKeyedMutex(),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.participants[p.ID] = p.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, participantID id.ParticipantID) (*models.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[participantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// Execute validates and mutates a copy of the participant under its key lock,
// then swaps the copy in. A validation error leaves the stored value untouched.
func (s *InMemoryStore) Execute(ctx context.Context, participantID id.ParticipantID, validate func(*models.Participant) error, mutate func(*models.Participant)) (*models.Participant, error) {
	key := participantID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	current, err := s.FindByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
	}
	mutate(current)

	s.mu.Lock()
	s.participants[participantID] = current.Clone()
	s.mu.Unlock()
	return current, nil
}
