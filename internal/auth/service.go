package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"bauliver.org/internal/ids"
)

const defaultTokenTTL = 30 * time.Minute

// Service implements credential issuance and the authorization guard on top
// of a UserStore.
type Service struct {
	users    UserStore
	tokenTTL time.Duration
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithTokenTTL overrides the access token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service backed by the given store.
func NewService(users UserStore, opts ...ServiceOption) *Service {
	svc := &Service{
		users:    users,
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register creates a new credential record. The email must be unused; the
// uniqueness check is an exact match on the stored value.
func (s *Service) Register(ctx context.Context, email, name, password, role, phone string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}
	if password == "" {
		return nil, ErrInvalidInput
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = RoleUser
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		Phone:        strings.TrimSpace(phone),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password collapse into the same ErrInvalidCredentials so the caller cannot
// enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates credentials and issues a bearer token. Deactivated
// accounts are rejected after the password check so the generic credential
// error stays indistinguishable for unknown emails.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", time.Time{}, err
	}
	if !user.Active {
		return "", time.Time{}, ErrInactiveAccount
	}
	return GenerateToken(user.Email, s.tokenTTL)
}

// Identify is the authorization guard: it resolves a raw bearer token to an
// active user record. Missing, invalid, or expired tokens and unknown
// subjects all fail with ErrUnauthenticated; a resolved but deactivated
// account fails with ErrInactiveAccount.
func (s *Service) Identify(ctx context.Context, rawToken string) (*User, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrUnauthenticated
	}
	subject, err := ParseAndValidate(rawToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

// Deactivate soft-disables an account; the record is never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return user, nil
	}
	user.Active = false
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
