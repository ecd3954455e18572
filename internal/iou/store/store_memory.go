package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ria/internal/iou/models"
	id "ria/pkg/domain"
	"ria/pkg/platform/sentinel"
	keyed "ria/pkg/platform/sync"
)

// InMemoryStore keeps IOUs in memory. Execute serializes per IOU id.
type InMemoryStore struct {
	mu    sync.RWMutex
	ious  map[id.IOUID]*models.IOU
	locks *keyed.KeyedMutex
}

func New() *InMemoryStore {
	return &InMemoryStore{
		ious:  make(map[id.IOUID]*models.IOU),
		locks: keyed.NewKeyedMutex(),
	}
}

func (s *InMemoryStore) Create(_ context.Context, iou *models.IOU) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ious[iou.ID]; ok {
		return sentinel.ErrConflict
	}
	s.ious[iou.ID] = iou.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, iouID id.IOUID) (*models.IOU, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	iou, ok := s.ious[iouID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return iou.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.Filter) ([]*models.IOU, error) {
	return s.collect(filter.Matches, 0), nil
}

// ListAvailable returns open postings whose description contains query,
// case-insensitively.
func (s *InMemoryStore) ListAvailable(_ context.Context, query string, limit int) ([]*models.IOU, error) {
	query = strings.TrimSpace(query)
	return s.collect(func(i *models.IOU) bool {
		return i.IsOpenPosting() && matchesQuery(i, query)
	}, limit), nil
}

// ListDue returns outstanding or accepted IOUs whose due date is before now,
// oldest due first.
func (s *InMemoryStore) ListDue(_ context.Context, now time.Time, limit int) ([]*models.IOU, error) {
	s.mu.RLock()
	var due []*models.IOU
	for _, i := range s.ious {
		if !i.Status.IsTerminal() && i.IsOverdue(now) {
			due = append(due, i.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(due, func(a, b int) bool { return due[a].DueDate.Before(due[b].DueDate) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// ListUnsettled returns terminal IOUs whose settlement is still pending,
// least recently updated first.
func (s *InMemoryStore) ListUnsettled(_ context.Context, limit int) ([]*models.IOU, error) {
	s.mu.RLock()
	var pending []*models.IOU
	for _, i := range s.ious {
		if i.NeedsSettlement() {
			pending = append(pending, i.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(pending, func(a, b int) bool { return pending[a].UpdatedAt.Before(pending[b].UpdatedAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *InMemoryStore) collect(match func(*models.IOU) bool, limit int) []*models.IOU {
	s.mu.RLock()
	out := make([]*models.IOU, 0)
	for _, i := range s.ious {
		if match(i) {
			out = append(out, i.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID.String() < out[b].ID.String()
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Execute validates and mutates a copy of the IOU under its key lock, then
// swaps the copy in. A validation error leaves the stored value untouched.
func (s *InMemoryStore) Execute(ctx context.Context, iouID id.IOUID, validate func(*models.IOU) error, mutate func(*models.IOU)) (*models.IOU, error) {
	key := iouID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	current, err := s.FindByID(ctx, iouID)
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
	s.ious[iouID] = current.Clone()
	s.mu.Unlock()
	return current, nil
}
