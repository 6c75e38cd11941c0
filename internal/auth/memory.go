package auth

import (
	"context"
	"sync"
)

// InMemoryStore is a map-backed UserStore used by tests and DSN-less dev runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
}

var _ UserStore = (*InMemoryStore)(nil)

// NewInMemoryStore returns an empty in-memory user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[u.Email]; exists {
		return ErrDuplicateEmail
	}
	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *InMemoryStore) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *InMemoryStore) Update(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Email != u.Email {
		if _, exists := s.byEmail[u.Email]; exists {
			return ErrDuplicateEmail
		}
		delete(s.byEmail, current.Email)
		s.byEmail[u.Email] = u.ID
	}
	s.byID[u.ID] = *u
	return nil
}
