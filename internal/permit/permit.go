package permit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("permit: not found")
	ErrForbidden    = errors.New("permit: forbidden")
	ErrInvalidInput = errors.New("permit: invalid input")
)

// Permit is a regulatory filing owned by exactly one user.
type Permit struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CustomerName string    `json:"customer_name"`
	Address      string    `json:"address"`
	SystemSizeKW float64   `json:"system_size_kw,omitempty"`
	Status       string    `json:"status"`
	PDFURL       string    `json:"pdf_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store persists permits.
type Store interface {
	Create(ctx context.Context, p *Permit) error
	Find(ctx context.Context, id string) (*Permit, error)
	List(ctx context.Context) ([]*Permit, error)
	ListByUser(ctx context.Context, userID string) ([]*Permit, error)
	Update(ctx context.Context, p *Permit) error
	Delete(ctx context.Context, id string) error
}

// CreateInput carries the caller-supplied fields for a new permit.
type CreateInput struct {
	CustomerName string
	Address      string
	SystemSizeKW float64
	Status       string
	PDFURL       string
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	CustomerName *string
	Address      *string
	SystemSizeKW *float64
	Status       *string
	PDFURL       *string
}
