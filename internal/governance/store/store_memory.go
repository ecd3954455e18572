// Package store persists proposals and votes.
//
// Error contract:
//   - FindByID, Execute and RecordVote return sentinel.ErrNotFound for unknown proposals
//   - Create returns sentinel.ErrConflict when the id already exists
//   - validate errors are returned unchanged and nothing is written
//
// RecordVote updates the voter's vote and the proposal tally together.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ria/internal/governance/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
	keyed "ria/pkg/platform/sync"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	proposals map[id.ProposalID]*models.Proposal
	votes     map[id.ProposalID]map[id.ParticipantID]models.Vote
	locks     *keyed.KeyedMutex
}

func New() *InMemoryStore {
	return &InMemoryStore{
		proposals: make(map[id.ProposalID]*models.Proposal),
		votes:     make(map[id.ProposalID]map[id.ParticipantID]models.Vote),
		locks:     keyed.NewKeyedMutex(),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.proposals[p.ID] = p.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, proposalID id.ProposalID) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proposals[proposalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// List returns proposals newest first, optionally narrowed to one status.
func (s *InMemoryStore) List(_ context.Context, status *models.Status) ([]*models.Proposal, error) {
	s.mu.RLock()
	out := make([]*models.Proposal, 0)
	for _, p := range s.proposals {
		if status == nil || p.Status == *status {
			out = append(out, p.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID.String() < out[b].ID.String()
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

// ListDue returns active proposals whose end date is at or before now,
// earliest end first.
func (s *InMemoryStore) ListDue(_ context.Context, now time.Time, limit int) ([]*models.Proposal, error) {
	s.mu.RLock()
	var due []*models.Proposal
	for _, p := range s.proposals {
		if p.Status == models.StatusActive && p.ClosableAt(now) {
			due = append(due, p.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(due, func(a, b int) bool { return due[a].EndDate.Before(due[b].EndDate) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *InMemoryStore) FindVote(_ context.Context, proposalID id.ProposalID, voterID id.ParticipantID) (*models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.votes[proposalID][voterID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

func (s *InMemoryStore) Execute(ctx context.Context, proposalID id.ProposalID, validate func(*models.Proposal) error, mutate func(*models.Proposal)) (*models.Proposal, error) {
	key := proposalID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	current, err := s.FindByID(ctx, proposalID)
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
	s.proposals[proposalID] = current.Clone()
	s.mu.Unlock()
	return current, nil
}

// RecordVote validates the proposal, replaces the voter's prior vote and
// adjusts the tally under the proposal's key lock.
func (s *InMemoryStore) RecordVote(ctx context.Context, vote models.Vote, validate func(*models.Proposal) error) (*models.Proposal, models.VoteChange, error) {
	key := vote.ProposalID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	current, err := s.FindByID(ctx, vote.ProposalID)
	if err != nil {
		return nil, "", err
	}
	if validate != nil {
		if err := validate(current); err != nil {
			return nil, "", err
		}
	}

	var prior *models.Direction
	if existing, err := s.FindVote(ctx, vote.ProposalID, vote.VoterID); err == nil {
		prior = &existing.Direction
	}
	change := current.ApplyVote(prior, vote.Direction)
	if change == models.VoteUnchanged {
		return current, change, nil
	}

	s.mu.Lock()
	if s.votes[vote.ProposalID] == nil {
		s.votes[vote.ProposalID] = make(map[id.ParticipantID]models.Vote)
	}
	s.votes[vote.ProposalID][vote.VoterID] = vote
	s.proposals[vote.ProposalID] = current.Clone()
	s.mu.Unlock()
	return current, change, nil
}
