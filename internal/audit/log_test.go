package audit

import (
	"context"
	"testing"

	"bauliver.org/internal/auth"
)

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}

func TestLogEventWithContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = auth.ContextWithUser(ctx, auth.User{ID: "user-1"})
	if err := LogEvent(ctx, "auth.login", map[string]any{"email": "a@x.com"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-7")
	if got := RequestIDFromContext(ctx); got != "req-7" {
		t.Fatalf("unexpected request id: %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}
