package permit

import (
	"context"
	"strings"
	"time"

	"bauliver.org/internal/auth"
	"bauliver.org/internal/ids"
)

const defaultStatus = "pending"

// Service enforces ownership rules on top of a Store. Every operation takes
// the already-authenticated actor; the HTTP layer resolves identity first.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a permit service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(fn func() time.Time) *Service {
	if fn != nil {
		s.now = fn
	}
	return s
}

// Create persists a new permit owned by the actor.
func (s *Service) Create(ctx context.Context, actor auth.User, in CreateInput) (*Permit, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Address = strings.TrimSpace(in.Address)
	if in.CustomerName == "" || in.Address == "" {
		return nil, ErrInvalidInput
	}
	if in.SystemSizeKW < 0 {
		return nil, ErrInvalidInput
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = defaultStatus
	}

	now := s.now().UTC()
	p := &Permit{
		ID:           ids.New(),
		UserID:       actor.ID,
		CustomerName: in.CustomerName,
		Address:      in.Address,
		SystemSizeKW: in.SystemSizeKW,
		Status:       status,
		PDFURL:       strings.TrimSpace(in.PDFURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all permits for admins and only owned permits otherwise.
func (s *Service) List(ctx context.Context, actor auth.User) ([]*Permit, error) {
	if actor.Role == auth.RoleAdmin {
		return s.store.List(ctx)
	}
	return s.store.ListByUser(ctx, actor.ID)
}

// Get returns a permit the actor may read. Existence is checked before
// ownership so a non-owner probing a missing id still sees not-found.
func (s *Service) Get(ctx context.Context, actor auth.User, id string) (*Permit, error) {
	p, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(actor, p.UserID) {
		return nil, ErrForbidden
	}
	return p, nil
}

// Update applies a partial update to a permit the actor may mutate.
func (s *Service) Update(ctx context.Context, actor auth.User, id string, in UpdateInput) (*Permit, error) {
	p, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(actor, p.UserID) {
		return nil, ErrForbidden
	}

	if in.CustomerName != nil {
		name := strings.TrimSpace(*in.CustomerName)
		if name == "" {
			return nil, ErrInvalidInput
		}
		p.CustomerName = name
	}
	if in.Address != nil {
		addr := strings.TrimSpace(*in.Address)
		if addr == "" {
			return nil, ErrInvalidInput
		}
		p.Address = addr
	}
	if in.SystemSizeKW != nil {
		if *in.SystemSizeKW < 0 {
			return nil, ErrInvalidInput
		}
		p.SystemSizeKW = *in.SystemSizeKW
	}
	if in.Status != nil {
		p.Status = strings.TrimSpace(*in.Status)
	}
	if in.PDFURL != nil {
		p.PDFURL = strings.TrimSpace(*in.PDFURL)
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a permit the actor may mutate.
func (s *Service) Delete(ctx context.Context, actor auth.User, id string) error {
	p, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanAccess(actor, p.UserID) {
		return ErrForbidden
	}
	return s.store.Delete(ctx, p.ID)
}
