package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	minIterations = 100_000
	minSaltLength = 16
	minKeyLength  = 32
)

// Config holds key-derivation parameters. The minimums are hard floors:
// NewHasher rejects anything weaker.
type Config struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// DefaultConfig returns the baseline PBKDF2 parameters: 100k iterations,
// 16-byte salt, 32-byte key.
func DefaultConfig() Config {
	return Config{
		Iterations: minIterations,
		SaltLength: minSaltLength,
		KeyLength:  minKeyLength,
	}
}

// Hasher derives and verifies password hashes. Hashes and salts are
// hex-encoded strings; the salt is stored alongside the hash by the
// caller and never derived from it.
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a [Hasher].
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Iterations < minIterations {
		return nil, errors.New("iterations must be >= 100000")
	}
	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return nil, errors.New("key length must be >= 32")
	}
	return &Hasher{config: cfg}, nil
}

// GenerateSalt returns a fresh hex-encoded random salt. Failure of the
// underlying random source propagates; there is no fallback entropy.
func (h *Hasher) GenerateSalt() (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	return hex.EncodeToString(salt), nil
}

// Hash derives a hex-encoded PBKDF2-SHA256 key from password and the
// hex-encoded salt. Same inputs always produce the same output.
func (h *Hasher) Hash(password, salt string) (string, error) {
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return "", errors.New("invalid salt encoding")
	}
	if len(rawSalt) < minSaltLength {
		return "", errors.New("salt too short")
	}

	key := pbkdf2.Key([]byte(password), rawSalt, h.config.Iterations, h.config.KeyLength, sha256.New)
	return hex.EncodeToString(key), nil
}

// Verify recomputes the hash for password+salt and compares it with the
// stored hash in constant time. Any internal failure (bad salt encoding,
// malformed hash) reads as a verification failure, never an error.
func (h *Hasher) Verify(password, encodedHash, salt string) bool {
	stored, err := hex.DecodeString(encodedHash)
	if err != nil || len(stored) == 0 {
		return false
	}

	computed, err := h.Hash(password, salt)
	if err != nil {
		return false
	}
	computedRaw, err := hex.DecodeString(computed)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(computedRaw, stored) == 1
}

// ConstantTimeCompare reports whether a and b are byte-identical without
// short-circuiting on the first mismatch. Unequal lengths compare false.
func ConstantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
