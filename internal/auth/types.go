package auth

import "time"

// Roles known to the service. The role column is free-form so new roles can be
// introduced without a migration; admin is the only role with special meaning.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a credential record. The password hash never leaves this package's
// storage boundary: it is excluded from every serialized representation.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanAccess reports whether the actor may operate on a resource owned by
// ownerID. Shared by every resource component so the ownership-or-admin rule
// lives in exactly one place.
func CanAccess(actor User, ownerID string) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return actor.ID != "" && actor.ID == ownerID
}

// RequireRole fails with ErrForbidden unless the actor holds the given role.
// Admins pass every role check.
func RequireRole(actor User, role string) error {
	if actor.Role == role || actor.Role == RoleAdmin {
		return nil
	}
	return ErrForbidden
}
