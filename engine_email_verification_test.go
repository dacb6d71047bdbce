package authcore

import (
	"context"
	"errors"
	"testing"
)

func TestVerifyEmail(t *testing.T) {
	engine, _ := newTestEngine(t)
	user := registerTestUser(t, engine)
	ctx := context.Background()

	token := engine.VerificationToken(ctx, user.ID)
	if token == "" {
		t.Fatal("no pending verification token after registration")
	}

	if err := engine.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	stored, _ := engine.loadUser(ctx, user.ID)
	if !stored.IsVerified {
		t.Fatal("user not marked verified")
	}
	if stored.VerificationToken != "" {
		t.Fatal("verification token not cleared")
	}
	if engine.VerificationToken(ctx, user.ID) != "" {
		t.Fatal("VerificationToken still reports a pending token")
	}
}

func TestVerifyEmailTokenIsSingleUse(t *testing.T) {
	engine, _ := newTestEngine(t)
	user := registerTestUser(t, engine)
	ctx := context.Background()

	token := engine.VerificationToken(ctx, user.ID)
	if err := engine.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	if err := engine.VerifyEmail(ctx, token); !errors.Is(err, ErrEmailVerificationFailed) {
		t.Fatalf("reused token: expected ErrEmailVerificationFailed, got %v", err)
	}
}

func TestVerifyEmailRejectsUnknownToken(t *testing.T) {
	engine, _ := newTestEngine(t)
	registerTestUser(t, engine)
	ctx := context.Background()

	if err := engine.VerifyEmail(ctx, ""); !errors.Is(err, ErrEmailVerificationFailed) {
		t.Fatalf("empty token: %v", err)
	}
	if err := engine.VerifyEmail(ctx, "no-such-token"); !errors.Is(err, ErrEmailVerificationFailed) {
		t.Fatalf("unknown token: %v", err)
	}
}

func TestVerifyEmailFindsTheRightUser(t *testing.T) {
	engine, _ := newTestEngine(t)
	first := registerTestUser(t, engine)
	ctx := context.Background()

	second, err := engine.Register(ctx, RegisterRequest{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "B0b&Secure!Pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := engine.VerifyEmail(ctx, engine.VerificationToken(ctx, second.ID)); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	firstStored, _ := engine.loadUser(ctx, first.ID)
	secondStored, _ := engine.loadUser(ctx, second.ID)
	if firstStored.IsVerified {
		t.Fatal("wrong user verified")
	}
	if !secondStored.IsVerified {
		t.Fatal("target user not verified")
	}
}
