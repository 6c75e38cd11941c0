package auth

import (
	"context"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	setSecret(t)
	return NewService(NewInMemoryStore())
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@x.com", "Alice", "pw1", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != RoleUser {
		t.Fatalf("expected default role %q, got %q", RoleUser, user.Role)
	}
	if !user.Active {
		t.Fatalf("expected new account to be active")
	}
	if user.PasswordHash == "pw1" || user.PasswordHash == "" {
		t.Fatalf("plaintext must not be stored")
	}

	got, err := svc.Authenticate(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("authenticated wrong user: %s", got.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@x.com", "Alice", "pw1", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// Other fields differ; only the email decides.
	if _, err := svc.Register(ctx, "a@x.com", "Someone Else", "pw2", RoleAdmin, "555"); err != ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthenticateIsGeneric(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@x.com", "", "pw1", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPass := svc.Authenticate(ctx, "a@x.com", "wrong")
	_, noSuchUser := svc.Authenticate(ctx, "nobody@x.com", "pw1")
	if wrongPass != ErrInvalidCredentials || noSuchUser != ErrInvalidCredentials {
		t.Fatalf("expected indistinguishable failures, got %v and %v", wrongPass, noSuchUser)
	}
}

func TestLoginAndIdentify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@x.com", "", "pw1", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, expiresAt, err := svc.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("token already expired: %v", expiresAt)
	}

	user, err := svc.Identify(ctx, token)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("unexpected subject: %s", user.Email)
	}
}

func TestIdentifyFailures(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Identify(ctx, ""); err != ErrUnauthenticated {
		t.Fatalf("missing token: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Identify(ctx, "bogus"); err != ErrUnauthenticated {
		t.Fatalf("invalid token: expected ErrUnauthenticated, got %v", err)
	}

	// Token for an email the store does not know.
	ghost, _, err := GenerateToken("ghost@x.com", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.Identify(ctx, ghost); err != ErrUnauthenticated {
		t.Fatalf("unknown subject: expected ErrUnauthenticated, got %v", err)
	}
}

func TestIdentifyInactiveAccount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@x.com", "", "pw1", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.Deactivate(ctx, user.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if _, err := svc.Identify(ctx, token); err != ErrInactiveAccount {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.com", "pw1"); err != ErrInactiveAccount {
		t.Fatalf("login on inactive account: expected ErrInactiveAccount, got %v", err)
	}
}

func TestCanAccess(t *testing.T) {
	owner := User{ID: "u1", Role: RoleUser}
	other := User{ID: "u2", Role: RoleUser}
	admin := User{ID: "u3", Role: RoleAdmin}

	if !CanAccess(owner, "u1") {
		t.Fatalf("owner must access own resource")
	}
	if CanAccess(other, "u1") {
		t.Fatalf("non-owner must not access")
	}
	if !CanAccess(admin, "u1") {
		t.Fatalf("admin must access any resource")
	}
}

func TestRequireRole(t *testing.T) {
	if err := RequireRole(User{Role: "installer"}, "installer"); err != nil {
		t.Fatalf("matching role rejected: %v", err)
	}
	if err := RequireRole(User{Role: RoleAdmin}, "installer"); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
	if err := RequireRole(User{Role: RoleUser}, "installer"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := UserFromContext(ctx); ok {
		t.Fatalf("empty context must not carry a user")
	}
	ctx = ContextWithUser(ctx, User{ID: "u7", Email: "a@x.com"})
	u, ok := UserFromContext(ctx)
	if !ok || u.ID != "u7" {
		t.Fatalf("unexpected user from context: %+v ok=%v", u, ok)
	}
}
