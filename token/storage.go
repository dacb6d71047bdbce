package token

import (
	"context"

	"github.com/MrEthical07/authcore/store"
)

// Storage persists the currently issued token pair under the two
// well-known keys in the external store.
type Storage struct {
	store store.Store
}

// NewStorage wraps kv with the token key contract.
func NewStorage(kv store.Store) *Storage {
	return &Storage{store: kv}
}

// Save upserts both tokens. The two writes are independent; a partial
// failure leaves at most one stale key, which reads back as absent-pair.
func (s *Storage) Save(ctx context.Context, access, refresh string) error {
	if err := s.store.Set(ctx, store.KeyAccessToken, access); err != nil {
		return err
	}
	return s.store.Set(ctx, store.KeyRefreshToken, refresh)
}

// Load returns the stored pair. A missing key yields an empty string,
// not an error.
func (s *Storage) Load(ctx context.Context) (access, refresh string, err error) {
	access, _, err = s.store.Get(ctx, store.KeyAccessToken)
	if err != nil {
		return "", "", err
	}
	refresh, _, err = s.store.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Clear removes both keys. Idempotent.
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, store.KeyAccessToken); err != nil {
		return err
	}
	return s.store.Delete(ctx, store.KeyRefreshToken)
}
