// Package limiter tracks failed login attempts per identity and locks
// an identity out after repeated failures. Lockout state lives in the
// shared key-value store so it survives restarts when the backend does.
package limiter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/store"
)

// ErrLockedOut is returned while an identity is inside its cooldown
// window. Callers surface this distinctly from invalid credentials.
var ErrLockedOut = errors.New("account locked")

// Config holds lockout tuning. Zero values take the defaults below.
type Config struct {
	MaxAttempts int
	LockoutFor  time.Duration
}

const (
	defaultMaxAttempts = 5
	defaultLockoutFor  = 30 * time.Minute
)

type record struct {
	Attempts    int   `json:"attempts"`
	LockedUntil int64 `json:"locked_until,omitempty"`
}

// Limiter enforces the failed-login lockout policy. Identities are
// normalized to lower case so differently-cased attempts against the
// same account accumulate into one record.
type Limiter struct {
	store  store.Store
	config Config
	now    func() time.Time
}

// New creates a [Limiter] on the given store.
func New(kv store.Store, cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.LockoutFor <= 0 {
		cfg.LockoutFor = defaultLockoutFor
	}
	return &Limiter{
		store:  kv,
		config: cfg,
		now:    time.Now,
	}
}

// WithClock overrides the limiter clock. Test hook.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	if now != nil {
		l.now = now
	}
	return l
}

func key(identity string) string {
	return store.LockoutPrefix + strings.ToLower(strings.TrimSpace(identity))
}

// Check returns [ErrLockedOut] while the identity is locked. A lock
// whose window has passed is treated as clear (and implicitly reset by
// the next Record call). Store read failures degrade to "not locked":
// the system stays usable with broken persistence.
func (l *Limiter) Check(ctx context.Context, identity string) error {
	rec, ok := l.load(ctx, identity)
	if !ok {
		return nil
	}

	if rec.LockedUntil > 0 && l.now().Unix() < rec.LockedUntil {
		return ErrLockedOut
	}
	return nil
}

// Record registers one failed attempt. The threshold attempt sets
// LockedUntil and returns [ErrLockedOut]; an expired lock resets the
// count to one before incrementing.
func (l *Limiter) Record(ctx context.Context, identity string) error {
	now := l.now()

	rec, ok := l.load(ctx, identity)
	if ok && rec.LockedUntil > 0 && now.Unix() >= rec.LockedUntil {
		rec = record{}
	}

	rec.Attempts++
	if rec.Attempts >= l.config.MaxAttempts {
		rec.LockedUntil = now.Add(l.config.LockoutFor).Unix()
	}

	if err := l.save(ctx, identity, rec); err != nil {
		return err
	}
	if rec.LockedUntil > 0 && now.Unix() < rec.LockedUntil {
		return ErrLockedOut
	}
	return nil
}

// Reset clears the record for the identity. Called on successful login.
func (l *Limiter) Reset(ctx context.Context, identity string) error {
	return l.store.Delete(ctx, key(identity))
}

// Attempts reports the current failure count. Missing records and read
// failures read as zero.
func (l *Limiter) Attempts(ctx context.Context, identity string) int {
	rec, ok := l.load(ctx, identity)
	if !ok {
		return 0
	}
	if rec.LockedUntil > 0 && l.now().Unix() >= rec.LockedUntil {
		return 0
	}
	return rec.Attempts
}

func (l *Limiter) load(ctx context.Context, identity string) (record, bool) {
	raw, found, err := l.store.Get(ctx, key(identity))
	if err != nil || !found {
		return record{}, false
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// Corrupted record: treat as no data rather than wedging logins.
		return record{}, false
	}
	return rec, true
}

func (l *Limiter) save(ctx context.Context, identity string, rec record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return l.store.Set(ctx, key(identity), string(raw))
}
