package logger

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")

	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("got %q, want req-123", got)
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}

func TestFromContext(t *testing.T) {
	base := New()

	// Without a request ID the base logger is returned unchanged.
	if got := FromContext(context.Background(), base); got != base {
		t.Error("expected base logger when no request ID is set")
	}

	ctx := WithRequestID(context.Background(), "req-456")
	if got := FromContext(ctx, base); got == base {
		t.Error("expected a derived logger when request ID is set")
	}
}
