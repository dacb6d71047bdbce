package credentials

import (
	"encoding/hex"
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(DefaultConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHashDeterministicForSameSalt(t *testing.T) {
	h := newTestHasher(t)

	salt, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}

	first, err := h.Hash("correct horse battery", salt)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := h.Hash("correct horse battery", salt)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first != second {
		t.Fatalf("same password and salt produced different hashes: %q vs %q", first, second)
	}
	if _, err := hex.DecodeString(first); err != nil {
		t.Fatalf("hash is not hex: %v", err)
	}
}

func TestHashDiffersAcrossSalts(t *testing.T) {
	h := newTestHasher(t)

	saltA, _ := h.GenerateSalt()
	saltB, _ := h.GenerateSalt()
	if saltA == saltB {
		t.Fatalf("two generated salts are identical: %q", saltA)
	}

	hashA, _ := h.Hash("correct horse battery", saltA)
	hashB, _ := h.Hash("correct horse battery", saltB)
	if hashA == hashB {
		t.Fatal("different salts produced the same hash")
	}
}

func TestGenerateSaltIsHexOfConfiguredLength(t *testing.T) {
	h := newTestHasher(t)

	salt, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	raw, err := hex.DecodeString(salt)
	if err != nil {
		t.Fatalf("salt is not hex: %v", err)
	}
	if len(raw) != DefaultConfig().SaltLength {
		t.Fatalf("salt length = %d bytes, want %d", len(raw), DefaultConfig().SaltLength)
	}
}

func TestVerify(t *testing.T) {
	h := newTestHasher(t)

	salt, _ := h.GenerateSalt()
	hash, _ := h.Hash("S3cret!password", salt)

	if !h.Verify("S3cret!password", hash, salt) {
		t.Fatal("correct password did not verify")
	}
	if h.Verify("S3cret!passworD", hash, salt) {
		t.Fatal("wrong password verified")
	}
	if h.Verify("S3cret!password", hash, strings.Repeat("00", 16)) {
		t.Fatal("wrong salt verified")
	}
	if h.Verify("S3cret!password", "not-hex", salt) {
		t.Fatal("malformed stored hash verified")
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	weak := []Config{
		{Iterations: 50_000, SaltLength: 16, KeyLength: 32},
		{Iterations: 100_000, SaltLength: 8, KeyLength: 32},
		{Iterations: 100_000, SaltLength: 16, KeyLength: 16},
	}
	for _, cfg := range weak {
		if _, err := NewHasher(cfg); err == nil {
			t.Fatalf("NewHasher accepted weak config %+v", cfg)
		}
	}
}

func TestConstantTimeCompare(t *testing.T) {
	if !ConstantTimeCompare("token-a", "token-a") {
		t.Fatal("equal strings did not compare equal")
	}
	if ConstantTimeCompare("token-a", "token-b") {
		t.Fatal("different strings compared equal")
	}
	if ConstantTimeCompare("token-a", "token-a-longer") {
		t.Fatal("different-length strings compared equal")
	}
	if !ConstantTimeCompare("", "") {
		t.Fatal("empty strings did not compare equal")
	}
}
