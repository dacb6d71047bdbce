package token

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/authcore/store"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(Config{Secret: testSecret, Issuer: "authcore-test"})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewServiceRejectsShortSecret(t *testing.T) {
	if _, err := NewService(Config{Secret: []byte("too short")}); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestCreateAndValidateAccessToken(t *testing.T) {
	s := newTestService(t)

	tok, err := s.CreateAccessToken("user-1", "a@example.com", "EDITOR", []string{"read", "write"})
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}
	if parts := strings.Split(tok, "."); len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}

	claims, err := s.Validate(tok)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" || claims.Role != "EDITOR" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if len(claims.Permissions) != 2 {
		t.Fatalf("permissions = %v, want 2 entries", claims.Permissions)
	}
	if claims.ID == "" {
		t.Fatal("missing jti")
	}
	if claims.Issuer != "authcore-test" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestValidateExpiredAccessToken(t *testing.T) {
	s := newTestService(t)
	issued := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s.WithClock(fixedClock(issued))

	tok, err := s.CreateAccessToken("user-1", "", "VIEWER", nil)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	s.WithClock(fixedClock(issued.Add(16 * time.Minute)))
	if _, err := s.Validate(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if !s.IsExpired(tok) {
		t.Fatal("IsExpired = false for expired token")
	}

	s.WithClock(fixedClock(issued.Add(14 * time.Minute)))
	if _, err := s.Validate(tok); err != nil {
		t.Fatalf("token should still be valid at 14m: %v", err)
	}
	if s.IsExpired(tok) {
		t.Fatal("IsExpired = true for live token")
	}
}

func TestValidateRejectsTamperedSignature(t *testing.T) {
	s := newTestService(t)

	tok, err := s.CreateAccessToken("user-1", "", "VIEWER", nil)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := s.Validate(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidateRejectsForeignKey(t *testing.T) {
	s := newTestService(t)
	other, err := NewService(Config{Secret: []byte("ffffffffffffffffffffffffffffffff")})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	tok, err := other.CreateAccessToken("user-1", "", "VIEWER", nil)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}
	if _, err := s.Validate(tok); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidateRejectsMalformedInput(t *testing.T) {
	s := newTestService(t)

	for _, tok := range []string{"", "abc", "a.b", "a.b.c.d", "..", "a..c"} {
		if _, err := s.Validate(tok); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidFormat", tok, err)
		}
	}
}

func TestDecodeWithoutVerification(t *testing.T) {
	s := newTestService(t)

	tok, err := s.CreateRefreshToken("user-1", "fam-1")
	if err != nil {
		t.Fatalf("CreateRefreshToken failed: %v", err)
	}

	claims := s.Decode(tok)
	if claims == nil {
		t.Fatal("Decode returned nil for a valid token")
	}
	if claims.Subject != "user-1" || claims.Family != "fam-1" {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	if s.Decode("not-a-token") != nil {
		t.Fatal("Decode accepted malformed input")
	}
}

func TestRotatePreservesFamilyAcrossChain(t *testing.T) {
	s := newTestService(t)

	refresh, err := s.CreateRefreshToken("user-1", "")
	if err != nil {
		t.Fatalf("CreateRefreshToken failed: %v", err)
	}
	family := s.Decode(refresh).Family
	if family == "" {
		t.Fatal("new refresh token has no family")
	}

	lookup := func(subject string) (Identity, bool) {
		return Identity{Email: "a@example.com", Role: "VIEWER", Permissions: []string{"read"}}, true
	}

	for i := 0; i < 3; i++ {
		pair, err := s.Rotate(refresh, lookup)
		if err != nil {
			t.Fatalf("Rotate %d failed: %v", i, err)
		}
		got := s.Decode(pair.RefreshToken)
		if got.Family != family {
			t.Fatalf("rotation %d changed family: %q -> %q", i, family, got.Family)
		}
		if got.Subject != "user-1" {
			t.Fatalf("rotation %d changed subject: %q", i, got.Subject)
		}
		refresh = pair.RefreshToken
	}
}

func TestRotateFailsOnBadTokenOrUnknownSubject(t *testing.T) {
	s := newTestService(t)

	lookup := func(string) (Identity, bool) { return Identity{}, true }
	if _, err := s.Rotate("garbage", lookup); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}

	refresh, err := s.CreateRefreshToken("user-1", "")
	if err != nil {
		t.Fatalf("CreateRefreshToken failed: %v", err)
	}
	if _, err := s.Rotate(refresh, func(string) (Identity, bool) { return Identity{}, false }); err == nil {
		t.Fatal("expected error when lookup rejects the subject")
	}
}

func TestStorageRoundTrip(t *testing.T) {
	kv := store.NewMemoryStore()
	storage := NewStorage(kv)
	ctx := context.Background()

	access, refresh, err := storage.Load(ctx)
	if err != nil || access != "" || refresh != "" {
		t.Fatalf("empty storage: access=%q refresh=%q err=%v", access, refresh, err)
	}

	if err := storage.Save(ctx, "access-token", "refresh-token"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	access, refresh, err = storage.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if access != "access-token" || refresh != "refresh-token" {
		t.Fatalf("Load returned %q, %q", access, refresh)
	}

	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	access, refresh, _ = storage.Load(ctx)
	if access != "" || refresh != "" {
		t.Fatalf("storage not cleared: %q, %q", access, refresh)
	}
}

func TestRotateRejectsAccessToken(t *testing.T) {
	s := newTestService(t)

	access, err := s.CreateAccessToken("user-1", "user@example.com", "VIEWER", []string{"read"})
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	// A valid access token carries no rotation family and must not
	// start a refresh chain.
	lookup := func(string) (Identity, bool) { return Identity{Role: "VIEWER"}, true }
	if _, err := s.Rotate(access, lookup); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("Rotate(access token) = %v, want ErrInvalidFormat", err)
	}
}
