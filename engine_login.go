package authcore

import (
	"context"
	"errors"

	"github.com/MrEthical07/authcore/limiter"
	"github.com/MrEthical07/authcore/metrics"
	"github.com/MrEthical07/authcore/session"
)

// Login authenticates an identity (email or username) against its
// stored credentials. Every failure short of a lockout reads as
// [ErrInvalidCredentials] so callers cannot probe which accounts
// exist; a locked identity gets [ErrAccountLocked] instead, even when
// the password would have been correct.
//
// On success the engine issues a fresh access/refresh pair with a new
// token family, persists it under the well-known storage keys, creates
// a device session and publishes the provider session singleton.
func (e *Engine) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := e.limiter.Check(ctx, req.Identity); err != nil {
		e.metricInc(metrics.MetricLoginLockedOut)
		e.emitAudit(ctx, "login", false, "", "", ErrAccountLocked, map[string]string{
			"identity": normalizeIdentity(req.Identity),
			"reason":   "locked_out",
		})
		return nil, ErrAccountLocked
	}

	user := e.lookupByIdentity(ctx, req.Identity)
	if user == nil || !e.hasher.Verify(req.Password, user.PasswordHash, user.Salt) {
		return nil, e.failLogin(ctx, req.Identity, user)
	}
	if !user.IsActive {
		e.metricInc(metrics.MetricLoginFailure)
		e.emitAudit(ctx, "login", false, user.ID, "", ErrAccountInactive, nil)
		return nil, ErrAccountInactive
	}

	access, err := e.tokens.CreateAccessToken(user.ID, user.Email, user.Role, user.Permissions)
	if err != nil {
		e.metricInc(metrics.MetricLoginFailure)
		e.logger.Error().Err(err).Msg("access token issuance failed")
		return nil, ErrInvalidCredentials
	}
	refresh, err := e.tokens.CreateRefreshToken(user.ID, "")
	if err != nil {
		e.metricInc(metrics.MetricLoginFailure)
		e.logger.Error().Err(err).Msg("refresh token issuance failed")
		return nil, ErrInvalidCredentials
	}
	if err := e.tokenStorage.Save(ctx, access, refresh); err != nil {
		e.logger.Warn().Err(err).Msg("token storage write failed")
	}

	sess, err := e.sessions.Create(ctx, user.ID, req.Device, req.RememberMe)
	if err != nil {
		e.metricInc(metrics.MetricLoginFailure)
		e.logger.Error().Err(err).Msg("session creation failed")
		// The pair saved above must not outlive the failed login.
		if clearErr := e.tokenStorage.Clear(ctx); clearErr != nil {
			e.logger.Warn().Err(clearErr).Msg("token storage clear failed")
		}
		return nil, ErrInvalidCredentials
	}

	sanitized := user.Sanitized()
	expiresIn := int64(e.tokens.AccessTTL().Seconds())
	if err := e.sessions.SetSession(ctx, &session.ProviderSession{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    e.clock().Unix() + expiresIn,
		User: map[string]any{
			"id":       sanitized.ID,
			"email":    sanitized.Email,
			"username": sanitized.Username,
			"role":     sanitized.Role,
		},
	}); err != nil {
		e.logger.Warn().Err(err).Msg("provider session write failed")
	}

	if err := e.limiter.Reset(ctx, req.Identity); err != nil {
		e.logger.Warn().Err(err).Msg("lockout reset failed")
	}

	user.Security.LastLoginAt = e.clock()
	user.UpdatedAt = e.clock()
	if err := e.saveUser(ctx, user); err != nil {
		e.logger.Warn().Err(err).Msg("last login update failed")
	}

	e.metricInc(metrics.MetricLoginSuccess)
	e.emitAudit(ctx, "login", true, user.ID, sess.ID, nil, nil)

	return &LoginResult{
		User:         sanitized,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		SessionID:    sess.ID,
	}, nil
}

// failLogin records the failed attempt and returns the uniform
// credential error, or the lockout error when this attempt tripped
// the threshold.
func (e *Engine) failLogin(ctx context.Context, identity string, user *User) error {
	userID := ""
	if user != nil {
		userID = user.ID
	}
	e.metricInc(metrics.MetricLoginFailure)
	if err := e.limiter.Record(ctx, identity); err != nil {
		if errors.Is(err, limiter.ErrLockedOut) {
			e.metricInc(metrics.MetricLoginLockedOut)
			e.emitAudit(ctx, "login", false, userID, "", ErrAccountLocked, nil)
			return ErrAccountLocked
		}
		e.logger.Warn().Err(err).Msg("attempt record failed")
	}
	e.emitAudit(ctx, "login", false, userID, "", ErrInvalidCredentials, nil)
	return ErrInvalidCredentials
}

// Logout tears down a session and the stored token pair. Unknown
// session ids are not an error; logout is idempotent.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	var userID string
	if sess, err := e.sessions.Get(ctx, sessionID); err == nil && sess != nil {
		userID = sess.UserID
	}
	if err := e.sessions.Remove(ctx, sessionID); err != nil {
		return err
	}
	if err := e.tokenStorage.Clear(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("token storage clear failed")
	}
	if err := e.sessions.ClearSession(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("provider session clear failed")
	}
	e.metricInc(metrics.MetricLogout)
	e.emitAudit(ctx, "logout", true, userID, sessionID, nil, nil)
	return nil
}
