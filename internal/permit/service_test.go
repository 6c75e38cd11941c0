package permit

import (
	"context"
	"testing"

	"bauliver.org/internal/auth"
)

var (
	owner = auth.User{ID: "owner-1", Role: auth.RoleUser}
	other = auth.User{ID: "other-1", Role: auth.RoleUser}
	admin = auth.User{ID: "admin-1", Role: auth.RoleAdmin}
)

func newPermit(t *testing.T, svc *Service, actor auth.User) *Permit {
	t.Helper()
	p, err := svc.Create(context.Background(), actor, CreateInput{
		CustomerName: "John Doe",
		Address:      "123 Main St",
		SystemSizeKW: 5.5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestCreateDefaultsStatusToPending(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	p := newPermit(t, svc, owner)
	if p.Status != "pending" {
		t.Fatalf("expected default status pending, got %q", p.Status)
	}
	if p.UserID != owner.ID {
		t.Fatalf("owner not recorded: %q", p.UserID)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	ctx := context.Background()

	if _, err := svc.Create(ctx, owner, CreateInput{Address: "123 Main St"}); err != ErrInvalidInput {
		t.Fatalf("missing customer name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(ctx, owner, CreateInput{CustomerName: "John", Address: "x", SystemSizeKW: -1}); err != ErrInvalidInput {
		t.Fatalf("negative size: expected ErrInvalidInput, got %v", err)
	}
}

func TestGetRoundTrip(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	created := newPermit(t, svc, owner)

	got, err := svc.Get(context.Background(), owner, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != *created {
		t.Fatalf("round trip mismatch:\ncreated %+v\nfetched %+v", created, got)
	}
}

func TestOwnershipMatrix(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	p := newPermit(t, svc, owner)
	ctx := context.Background()
	newStatus := "approved"

	// Non-owner, non-admin is forbidden on every verb.
	if _, err := svc.Get(ctx, other, p.ID); err != ErrForbidden {
		t.Fatalf("read by non-owner: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, other, p.ID, UpdateInput{Status: &newStatus}); err != ErrForbidden {
		t.Fatalf("update by non-owner: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, other, p.ID); err != ErrForbidden {
		t.Fatalf("delete by non-owner: expected ErrForbidden, got %v", err)
	}

	// Owner and admin both succeed.
	if _, err := svc.Get(ctx, owner, p.ID); err != nil {
		t.Fatalf("read by owner: %v", err)
	}
	if _, err := svc.Get(ctx, admin, p.ID); err != nil {
		t.Fatalf("read by admin: %v", err)
	}
	if _, err := svc.Update(ctx, admin, p.ID, UpdateInput{Status: &newStatus}); err != nil {
		t.Fatalf("update by admin: %v", err)
	}
}

func TestUpdateIsPartial(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	p := newPermit(t, svc, owner)
	ctx := context.Background()

	status := "approved"
	size := 6.0
	updated, err := svc.Update(ctx, owner, p.ID, UpdateInput{Status: &status, SystemSizeKW: &size})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != "approved" || updated.SystemSizeKW != 6.0 {
		t.Fatalf("fields not applied: %+v", updated)
	}
	if updated.CustomerName != "John Doe" {
		t.Fatalf("untouched field changed: %q", updated.CustomerName)
	}
}

func TestListFiltersByOwnershipUnlessAdmin(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	ctx := context.Background()
	newPermit(t, svc, owner)
	newPermit(t, svc, other)

	mine, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != owner.ID {
		t.Fatalf("expected only owned permits, got %d", len(mine))
	}

	all, err := svc.List(ctx, admin)
	if err != nil {
		t.Fatalf("List as admin: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin should see all permits, got %d", len(all))
	}
}

func TestDeleteThenGetReturnsNotFound(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	p := newPermit(t, svc, owner)
	ctx := context.Background()

	if err := svc.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, owner, p.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, owner, "missing"); err != ErrNotFound {
		t.Fatalf("delete on missing id: expected ErrNotFound, got %v", err)
	}
}
