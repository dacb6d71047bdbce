package store

import (
	"context"
	"errors"
)

// ErrStoreUnavailable wraps backend transport failures so callers can
// distinguish "no data" from "cannot reach the store".
var ErrStoreUnavailable = errors.New("store unavailable")

// Store is the persisted string-to-string space authcore writes into.
// Every write is a standalone upsert; no multi-key atomicity is assumed.
// A missing key is reported through the bool return, never as an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
