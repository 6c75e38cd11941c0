package auth

import (
	"testing"
	"time"
)

func setSecret(t *testing.T) {
	t.Helper()
	t.Setenv("BAULIVER_AUTH_SECRET", "test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
}

func TestGenerateAndValidateToken(t *testing.T) {
	setSecret(t)

	token, expiresAt, err := GenerateToken("a@x.com", 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	subject, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if subject != "a@x.com" {
		t.Fatalf("unexpected subject: %s", subject)
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	setSecret(t)

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	timeNow = func() time.Time { return issued }
	t.Cleanup(func() { timeNow = time.Now })

	token, _, err := GenerateToken("a@x.com", ttl)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// One instant before expiry the token verifies.
	timeNow = func() time.Time { return issued.Add(ttl - time.Second) }
	if _, err := ParseAndValidate(token); err != nil {
		t.Fatalf("expected valid token before expiry: %v", err)
	}

	// At exactly issue_time+ttl the token is rejected.
	timeNow = func() time.Time { return issued.Add(ttl) }
	if _, err := ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken at expiry, got %v", err)
	}

	timeNow = func() time.Time { return issued.Add(ttl + time.Hour) }
	if _, err := ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestParseAndValidateRejectsGarbage(t *testing.T) {
	setSecret(t)

	for _, raw := range []string{"", "not-a-token", "a.b.c", "   "} {
		if _, err := ParseAndValidate(raw); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}

func TestTokenRejectedWhenSignedWithOtherSecret(t *testing.T) {
	t.Setenv("BAULIVER_AUTH_SECRET", "first-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	token, _, err := GenerateToken("a@x.com", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	t.Setenv("BAULIVER_AUTH_SECRET", "second-secret")
	ResetSecretForTests()

	if _, err := ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}
