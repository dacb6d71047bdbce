package authcore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/authcore/credentials"
	"github.com/MrEthical07/authcore/limiter"
	"github.com/MrEthical07/authcore/metrics"
	"github.com/MrEthical07/authcore/session"
	"github.com/MrEthical07/authcore/store"
	"github.com/MrEthical07/authcore/token"
)

// Engine is the auth orchestrator: the only component callers invoke
// directly. It composes credential crypto, the token service, the
// session manager, and the login limiter, and translates every lower
// failure into the [AuthError] taxonomy.
type Engine struct {
	config       Config
	store        store.Store
	roles        *roleTable
	hasher       *credentials.Hasher
	tokens       *token.Service
	tokenStorage *token.Storage
	sessions     *session.Manager
	limiter      *limiter.Limiter
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	audit        *auditDispatcher
	now          func() time.Time
}

// Sessions exposes the session manager for direct session queries and
// provider-session access.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Tokens exposes the token service for callers that validate tokens on
// their own request paths.
func (e *Engine) Tokens() *token.Service {
	return e.tokens
}

// Close stops the session sweeper and drains the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.sessions != nil {
		e.sessions.Close()
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() metrics.Snapshot {
	if e == nil {
		return metrics.Snapshot{Counters: map[metrics.MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// WithClock overrides the clock of the engine and every time-sensitive
// component it owns. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	e.tokens.WithClock(now)
	e.limiter.WithClock(now)
	e.sessions.WithClock(now)
	return e
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *Engine) metricInc(id metrics.MetricID) {
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, sessionID string, cause error, meta map[string]string) {
	event := AuditEvent{
		Timestamp: e.clock(),
		EventType: eventType,
		UserID:    userID,
		SessionID: sessionID,
		Success:   success,
		Metadata:  meta,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.audit.Emit(ctx, event)
}

// ---- credential record persistence ----

func (e *Engine) loadUser(ctx context.Context, id string) (*User, error) {
	raw, found, err := e.store.Get(ctx, store.UserPrefix+id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// A record that cannot be parsed must not take the whole
		// system down; it reads as missing and is logged for repair.
		e.logger.Warn().Str("user_id", id).Msg("corrupted credential record")
		return nil, nil
	}
	return &user, nil
}

func (e *Engine) saveUser(ctx context.Context, user *User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return e.store.Set(ctx, store.UserPrefix+user.ID, string(raw))
}

func (e *Engine) saveUserIndexed(ctx context.Context, user *User) error {
	if err := e.saveUser(ctx, user); err != nil {
		return err
	}
	if err := e.store.Set(ctx, store.UserEmailPrefix+normalizeIdentity(user.Email), user.ID); err != nil {
		return err
	}
	return e.store.Set(ctx, store.UserUsernamePrefix+normalizeIdentity(user.Username), user.ID)
}

// lookupByIdentity resolves an email or username to its credential
// record. Missing index entries and store failures both read as "no
// user": login paths collapse them into invalid-credentials anyway.
func (e *Engine) lookupByIdentity(ctx context.Context, identity string) *User {
	normalized := normalizeIdentity(identity)

	for _, prefix := range []string{store.UserEmailPrefix, store.UserUsernamePrefix} {
		id, found, err := e.store.Get(ctx, prefix+normalized)
		if err != nil {
			e.logger.Warn().Err(err).Msg("identity index read failed")
			continue
		}
		if !found {
			continue
		}
		user, err := e.loadUser(ctx, id)
		if err != nil {
			e.logger.Warn().Err(err).Msg("credential record read failed")
			return nil
		}
		if user != nil {
			return user
		}
	}
	return nil
}

// forEachUser iterates every stored credential record. Used by the
// token-keyed flows (reset, verification) that have no index.
func (e *Engine) forEachUser(ctx context.Context, fn func(*User) bool) error {
	keys, err := e.store.Keys(ctx, store.UserPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		user, err := e.loadUser(ctx, key[len(store.UserPrefix):])
		if err != nil {
			return err
		}
		if user == nil {
			continue
		}
		if !fn(user) {
			return nil
		}
	}
	return nil
}

func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
