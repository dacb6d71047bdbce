package session

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/authcore/credentials"
	"github.com/MrEthical07/authcore/metrics"
	"github.com/MrEthical07/authcore/store"
)

// Config holds session policy. Zero values take the defaults below.
type Config struct {
	IdleTimeout        time.Duration
	AbsoluteTimeout    time.Duration
	RememberMeTimeout  time.Duration
	MaxSessionsPerUser int
	SweepInterval      time.Duration
}

const (
	defaultIdleTimeout       = 30 * time.Minute
	defaultAbsoluteTimeout   = 24 * time.Hour
	defaultRememberMeTimeout = 30 * 24 * time.Hour
	defaultMaxSessions       = 5
	defaultSweepInterval     = time.Minute
)

func (c Config) withDefaults() Config {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.AbsoluteTimeout <= 0 {
		c.AbsoluteTimeout = defaultAbsoluteTimeout
	}
	if c.RememberMeTimeout <= 0 {
		c.RememberMeTimeout = defaultRememberMeTimeout
	}
	if c.MaxSessionsPerUser <= 0 {
		c.MaxSessionsPerUser = defaultMaxSessions
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaultSweepInterval
	}
	return c
}

// Manager tracks device sessions and the provider-session singleton.
// Safe for concurrent use; the sweep goroutine and request paths share
// the store through the same liveness predicate, so neither depends on
// the other's timing.
type Manager struct {
	store   store.Store
	config  Config
	logger  zerolog.Logger
	metrics *metrics.Metrics

	// clockMu guards now against the sweep goroutine; WithClock may be
	// called after StartSweeper. Never held together with mu.
	clockMu sync.Mutex
	now     func() time.Time

	mu        sync.Mutex
	listeners listenerRegistry

	sweepStop chan struct{}
	sweepDone chan struct{}
	sweepOnce sync.Once
	stopOnce  sync.Once
}

// NewManager creates a [Manager] on the given store. The sweeper is not
// started until [Manager.StartSweeper].
func NewManager(kv store.Store, cfg Config) *Manager {
	return &Manager{
		store:   kv,
		config:  cfg.withDefaults(),
		logger:  zerolog.Nop(),
		metrics: metrics.New(metrics.Config{}),
		now:     time.Now,
	}
}

// WithLogger sets the operational logger.
func (m *Manager) WithLogger(logger zerolog.Logger) *Manager {
	m.logger = logger
	return m
}

// WithMetrics sets the shared counter set.
func (m *Manager) WithMetrics(mx *metrics.Metrics) *Manager {
	if mx != nil {
		m.metrics = mx
	}
	return m
}

// WithClock overrides the manager clock. Test hook; safe to call while
// the sweeper is running.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	if now != nil {
		m.clockMu.Lock()
		m.now = now
		m.clockMu.Unlock()
	}
	return m
}

func (m *Manager) clock() time.Time {
	m.clockMu.Lock()
	now := m.now
	m.clockMu.Unlock()
	return now()
}

// Create allocates and persists a new session for userID. device may be
// nil. rememberMe extends the absolute expiry to the remember-me window.
// When the user's live session count would exceed the cap, the sessions
// with the oldest CreatedAt are evicted first.
func (m *Manager) Create(ctx context.Context, userID string, device *DeviceInfo, rememberMe bool) (*Session, error) {
	id, err := credentials.GenerateSecureToken(32)
	if err != nil {
		return nil, err
	}

	now := m.clock()
	lifetime := m.config.AbsoluteTimeout
	if rememberMe {
		lifetime = m.config.RememberMeTimeout
	}

	sess := &Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(lifetime),
		IsActive:     true,
	}
	if device != nil {
		sess.DeviceID = device.DeviceID
		sess.DeviceName = device.DeviceName
		sess.IPAddress = device.IPAddress
		sess.UserAgent = device.UserAgent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}
	if err := m.indexAdd(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := m.enforceCap(ctx, userID); err != nil {
		return nil, err
	}

	m.metrics.Inc(metrics.MetricSessionCreated)
	return sess, nil
}

// Get returns the session only while it is live: active, inside its
// absolute expiry, and inside the idle window. Dead records read as
// missing even though the sweep may not have removed them yet.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil || !m.isLive(sess, m.clock()) {
		return nil, nil
	}
	return sess, nil
}

// Touch bumps LastActivity to now and persists. No-op for missing,
// deactivated, or already dead sessions.
func (m *Manager) Touch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil || !m.isLive(sess, m.clock()) {
		return nil
	}

	sess.LastActivity = m.clock()
	return m.save(ctx, sess)
}

// Remove hard-deletes the session and its index entry. Idempotent.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(ctx, id)
}

// RemoveUser hard-deletes every session for userID. Idempotent.
func (m *Manager) RemoveUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.indexIDs(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := m.store.Delete(ctx, store.SessionPrefix+id); err != nil {
			return err
		}
		m.metrics.Inc(metrics.MetricSessionRemoved)
	}
	return m.store.Delete(ctx, store.SessionUserPrefix+userID)
}

// Deactivate soft-deletes: the record stays until a timeout crosses or
// the sweep removes it, but it is no longer retrievable and Touch
// ignores it.
func (m *Manager) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.load(ctx, id)
	if err != nil || sess == nil {
		return err
	}

	sess.IsActive = false
	return m.save(ctx, sess)
}

// UserSessions returns the user's live sessions, most recently active
// first.
func (m *Manager) UserSessions(ctx context.Context, userID string) ([]*Session, error) {
	ids, err := m.indexIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := m.clock()
	live := make([]*Session, 0, len(ids))
	for _, id := range ids {
		sess, err := m.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if sess != nil && m.isLive(sess, now) {
			live = append(live, sess)
		}
	}

	sort.Slice(live, func(i, j int) bool {
		return live[i].LastActivity.After(live[j].LastActivity)
	})
	return live, nil
}

// Statistics aggregates over every stored record, live or not.
func (m *Manager) Statistics(ctx context.Context) (Statistics, error) {
	keys, err := m.store.Keys(ctx, store.SessionPrefix)
	if err != nil {
		return Statistics{}, err
	}

	var (
		stats Statistics
		total time.Duration
		users = make(map[string]struct{})
		now   = m.clock()
	)
	for _, key := range keys {
		sess, err := m.load(ctx, key[len(store.SessionPrefix):])
		if err != nil {
			return Statistics{}, err
		}
		if sess == nil {
			continue
		}

		stats.TotalSessions++
		users[sess.UserID] = struct{}{}
		total += sess.LastActivity.Sub(sess.CreatedAt)
		if m.isLive(sess, now) {
			stats.ActiveSessions++
		}
	}

	stats.UniqueUsers = len(users)
	if stats.TotalSessions > 0 {
		stats.AverageSessionDuration = total / time.Duration(stats.TotalSessions)
	}
	return stats, nil
}

// StartSweeper launches the periodic sweep. Safe to call once; later
// calls are no-ops.
func (m *Manager) StartSweeper() {
	m.sweepOnce.Do(func() {
		m.sweepStop = make(chan struct{})
		m.sweepDone = make(chan struct{})
		go m.sweepLoop()
	})
}

// Close stops the sweeper, if running.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		if m.sweepStop != nil {
			close(m.sweepStop)
			<-m.sweepDone
		}
	})
}

func (m *Manager) sweepLoop() {
	defer close(m.sweepDone)

	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep(context.Background())
		case <-m.sweepStop:
			return
		}
	}
}

// Sweep removes every session that is past its absolute expiry or idle
// window. Deactivated records inside both windows are left for a later
// tick; reads already filter them out.
func (m *Manager) Sweep(ctx context.Context) {
	keys, err := m.store.Keys(ctx, store.SessionPrefix)
	if err != nil {
		m.logger.Warn().Err(err).Msg("session sweep: listing failed")
		return
	}

	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		id := key[len(store.SessionPrefix):]
		sess, err := m.load(ctx, id)
		if err != nil || sess == nil {
			continue
		}
		if m.isTimedOut(sess, now) {
			if err := m.remove(ctx, id); err != nil {
				m.logger.Warn().Err(err).Str("session_id", id).Msg("session sweep: remove failed")
				continue
			}
			m.metrics.Inc(metrics.MetricSessionSwept)
		}
	}
}

func (m *Manager) isLive(sess *Session, now time.Time) bool {
	return sess.IsActive && !m.isTimedOut(sess, now)
}

func (m *Manager) isTimedOut(sess *Session, now time.Time) bool {
	if !now.Before(sess.ExpiresAt) {
		return true
	}
	return now.Sub(sess.LastActivity) >= m.config.IdleTimeout
}

func (m *Manager) enforceCap(ctx context.Context, userID string) error {
	ids, err := m.indexIDs(ctx, userID)
	if err != nil {
		return err
	}

	now := m.clock()
	live := make([]*Session, 0, len(ids))
	for _, id := range ids {
		sess, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		if sess != nil && m.isLive(sess, now) {
			live = append(live, sess)
		}
	}
	if len(live) <= m.config.MaxSessionsPerUser {
		return nil
	}

	// Oldest login goes first, not least-recently-used.
	sort.Slice(live, func(i, j int) bool {
		if !live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].CreatedAt.Before(live[j].CreatedAt)
		}
		return live[i].LastActivity.Before(live[j].LastActivity)
	})

	for _, victim := range live[:len(live)-m.config.MaxSessionsPerUser] {
		if err := m.remove(ctx, victim.ID); err != nil {
			return err
		}
		m.metrics.Inc(metrics.MetricSessionEvicted)
	}
	return nil
}

func (m *Manager) load(ctx context.Context, id string) (*Session, error) {
	raw, found, err := m.store.Get(ctx, store.SessionPrefix+id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// Corrupted record: unreadable is unretrievable. The sweep
		// cannot parse it either, so delete it here.
		m.logger.Warn().Str("session_id", id).Msg("dropping corrupted session record")
		_ = m.store.Delete(ctx, store.SessionPrefix+id)
		return nil, nil
	}
	return &sess, nil
}

func (m *Manager) save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, store.SessionPrefix+sess.ID, string(raw))
}

func (m *Manager) remove(ctx context.Context, id string) error {
	sess, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, store.SessionPrefix+id); err != nil {
		return err
	}
	if sess != nil {
		if err := m.indexRemove(ctx, sess.UserID, id); err != nil {
			return err
		}
	}
	m.metrics.Inc(metrics.MetricSessionRemoved)
	return nil
}

func (m *Manager) indexIDs(ctx context.Context, userID string) ([]string, error) {
	raw, found, err := m.store.Get(ctx, store.SessionUserPrefix+userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// A broken index must not break the primary records; rebuild
		// lazily by treating it as empty.
		m.logger.Warn().Str("user_id", userID).Msg("dropping corrupted session index")
		_ = m.store.Delete(ctx, store.SessionUserPrefix+userID)
		return nil, nil
	}
	return ids, nil
}

func (m *Manager) indexAdd(ctx context.Context, userID, id string) error {
	ids, err := m.indexIDs(ctx, userID)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return m.indexWrite(ctx, userID, append(ids, id))
}

func (m *Manager) indexRemove(ctx context.Context, userID, id string) error {
	ids, err := m.indexIDs(ctx, userID)
	if err != nil {
		return err
	}

	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		return m.store.Delete(ctx, store.SessionUserPrefix+userID)
	}
	return m.indexWrite(ctx, userID, kept)
}

func (m *Manager) indexWrite(ctx context.Context, userID string, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, store.SessionUserPrefix+userID, string(raw))
}
