package session

import (
	"context"
	"encoding/json"

	"github.com/MrEthical07/authcore/store"
)

// SetSession replaces the provider-session singleton and notifies
// listeners with the new value.
func (m *Manager) SetSession(ctx context.Context, sess *ProviderSession) error {
	if sess == nil {
		return m.ClearSession(ctx)
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, store.KeyProviderSession, string(raw)); err != nil {
		return err
	}

	m.emit(EventSessionChanged, sess)
	return nil
}

// GetSession returns the provider session, or nil when absent or
// unreadable. A corrupted record reads as no session; the system stays
// usable with degraded persistence.
func (m *Manager) GetSession(ctx context.Context) *ProviderSession {
	raw, found, err := m.store.Get(ctx, store.KeyProviderSession)
	if err != nil {
		m.logger.Warn().Err(err).Msg("provider session read failed")
		return nil
	}
	if !found {
		return nil
	}

	var sess ProviderSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		m.logger.Warn().Msg("dropping corrupted provider session")
		_ = m.store.Delete(ctx, store.KeyProviderSession)
		return nil
	}
	return &sess
}

// ClearSession removes the singleton and notifies listeners with nil.
func (m *Manager) ClearSession(ctx context.Context) error {
	if err := m.store.Delete(ctx, store.KeyProviderSession); err != nil {
		return err
	}
	m.emit(EventSessionChanged, (*ProviderSession)(nil))
	return nil
}

// UpdateSession merges non-zero fields of patch into the current
// session and persists. No-op when no session exists.
func (m *Manager) UpdateSession(ctx context.Context, patch ProviderSession) error {
	current := m.GetSession(ctx)
	if current == nil {
		return nil
	}

	if patch.AccessToken != "" {
		current.AccessToken = patch.AccessToken
	}
	if patch.RefreshToken != "" {
		current.RefreshToken = patch.RefreshToken
	}
	if patch.ExpiresAt != 0 {
		current.ExpiresAt = patch.ExpiresAt
	}
	if patch.User != nil {
		current.User = patch.User
	}
	return m.SetSession(ctx, current)
}

// IsValidSession reports whether a provider session exists with a
// non-empty access token and an unexpired seconds-based expiry.
func (m *Manager) IsValidSession(ctx context.Context) bool {
	sess := m.GetSession(ctx)
	if sess == nil || sess.AccessToken == "" {
		return false
	}
	return m.clock().Unix() < sess.ExpiresAt
}

// AccessToken returns the provider session's access token, or "".
func (m *Manager) AccessToken(ctx context.Context) string {
	if sess := m.GetSession(ctx); sess != nil {
		return sess.AccessToken
	}
	return ""
}

// RefreshToken returns the provider session's refresh token, or "".
func (m *Manager) RefreshToken(ctx context.Context) string {
	if sess := m.GetSession(ctx); sess != nil {
		return sess.RefreshToken
	}
	return ""
}

// User returns the provider session's user payload, or nil.
func (m *Manager) User(ctx context.Context) map[string]any {
	if sess := m.GetSession(ctx); sess != nil {
		return sess.User
	}
	return nil
}

// IsExpiringSoon reports whether the provider session expires within
// threshold seconds. Absent sessions are not "expiring".
func (m *Manager) IsExpiringSoon(ctx context.Context, thresholdSeconds int64) bool {
	sess := m.GetSession(ctx)
	if sess == nil || sess.AccessToken == "" {
		return false
	}
	return sess.ExpiresAt-m.clock().Unix() <= thresholdSeconds
}
