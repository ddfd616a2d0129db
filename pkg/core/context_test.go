package core

import (
	"context"
	"testing"
)

func TestEnsureRequestID(t *testing.T) {
	ctx := context.Background()

	ctx, id := EnsureRequestID(ctx)
	if id == "" {
		t.Fatal("expected a generated request id")
	}

	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id {
		t.Errorf("expected stable request id, got %q then %q", id, id2)
	}
	if ctx2 != ctx {
		t.Errorf("expected context to be reused when id already present")
	}
}

func TestWithUserID(t *testing.T) {
	ctx := WithUserID(context.Background(), "alice")

	id, ok := UserID(ctx)
	if !ok || id != "alice" {
		t.Errorf("expected user id alice, got %q (ok=%v)", id, ok)
	}

	if _, ok := UserID(context.Background()); ok {
		t.Error("expected no user id on empty context")
	}
}
