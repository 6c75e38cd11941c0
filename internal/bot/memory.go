package bot

import (
	"context"
	"sort"
	"sync"
)

const defaultListLimit = 100

// InMemoryTaskStore is a map-backed TaskStore for tests and DSN-less dev runs.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

var _ TaskStore = (*InMemoryTaskStore)(nil)

// NewInMemoryTaskStore returns an empty in-memory task store.
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[string]Task)}
}

func (s *InMemoryTaskStore) Create(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = *t
	return nil
}

func (s *InMemoryTaskStore) Find(ctx context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *InMemoryTaskStore) List(ctx context.Context, status string, limit, offset int) ([]*Task, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Task
	for _, t := range s.tasks {
		if status != "" && t.Status != status {
			continue
		}
		cp := t
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return window(res, limit, offset), nil
}

// window applies offset then limit to an already sorted result set.
func window[T any](res []T, limit, offset int) []T {
	if offset >= len(res) {
		return nil
	}
	if offset > 0 {
		res = res[offset:]
	}
	if len(res) > limit {
		res = res[:limit]
	}
	return res
}

func (s *InMemoryTaskStore) Update(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	s.tasks[t.ID] = *t
	return nil
}

func (s *InMemoryTaskStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, t := range s.tasks {
		counts[t.Status]++
	}
	return counts, nil
}

// InMemoryWorkflowStore is a map-backed WorkflowStore for tests and DSN-less
// dev runs.
type InMemoryWorkflowStore struct {
	mu        sync.RWMutex
	workflows map[string]Workflow
}

var _ WorkflowStore = (*InMemoryWorkflowStore)(nil)

// NewInMemoryWorkflowStore returns an empty in-memory workflow store.
func NewInMemoryWorkflowStore() *InMemoryWorkflowStore {
	return &InMemoryWorkflowStore{workflows: make(map[string]Workflow)}
}

func (s *InMemoryWorkflowStore) Create(ctx context.Context, w *Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[w.ID] = *w
	return nil
}

func (s *InMemoryWorkflowStore) Find(ctx context.Context, id string) (*Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workflows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

func (s *InMemoryWorkflowStore) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Workflow, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*Workflow
	for _, w := range s.workflows {
		if activeOnly && !w.Active {
			continue
		}
		cp := w
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return window(res, limit, offset), nil
}

func (s *InMemoryWorkflowStore) IncrementCounters(ctx context.Context, id string, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[id]
	if !ok {
		return ErrNotFound
	}
	if success {
		w.SuccessCount++
	} else {
		w.FailureCount++
	}
	s.workflows[id] = w
	return nil
}

func (s *InMemoryWorkflowStore) CountActive(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, w := range s.workflows {
		if w.Active {
			n++
		}
	}
	return n, nil
}
