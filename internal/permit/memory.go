package permit

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is a map-backed Store used by tests and DSN-less dev runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	permits map[string]Permit
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty in-memory permit store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{permits: make(map[string]Permit)}
}

func (s *InMemoryStore) Create(ctx context.Context, p *Permit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permits[p.ID] = *p
	return nil
}

func (s *InMemoryStore) Find(ctx context.Context, id string) (*Permit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permits[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]*Permit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(Permit) bool { return true }), nil
}

func (s *InMemoryStore) ListByUser(ctx context.Context, userID string) ([]*Permit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(p Permit) bool { return p.UserID == userID }), nil
}

func (s *InMemoryStore) Update(ctx context.Context, p *Permit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permits[p.ID]; !ok {
		return ErrNotFound
	}
	s.permits[p.ID] = *p
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permits[id]; !ok {
		return ErrNotFound
	}
	delete(s.permits, id)
	return nil
}

// collect must be called with the lock held. Results are ordered by id so
// listings are stable; ids are ULIDs, so this is creation order.
func (s *InMemoryStore) collect(keep func(Permit) bool) []*Permit {
	var res []*Permit
	for _, p := range s.permits {
		if keep(p) {
			cp := p
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}
