package auth

import "context"

// UserStore persists credential records.
type UserStore interface {
	// Create inserts a new user. Fails with ErrDuplicateEmail when the email
	// is already present (exact match).
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}
