package authcore

import (
	"context"
	"strings"
	"time"

	"github.com/MrEthical07/authcore/credentials"
	"github.com/MrEthical07/authcore/metrics"
)

// RequestPasswordReset issues a one-time reset token for the account
// behind email and returns it for out-of-band delivery. An unknown or
// inactive email returns an empty token and no error, so the call
// reveals nothing about which accounts exist.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	e.metricInc(metrics.MetricPasswordResetRequest)

	user := e.lookupByIdentity(ctx, email)
	if user == nil || !user.IsActive {
		e.emitAudit(ctx, "password_reset_request", true, "", "", nil, map[string]string{
			"known": "false",
		})
		return "", nil
	}

	reset, err := credentials.GenerateSecureToken(32)
	if err != nil {
		return "", ErrPasswordResetFailed
	}
	user.Security.ResetToken = reset
	user.Security.ResetTokenExpiresAt = e.clock().Add(e.config.Account.ResetTokenTTL)
	user.UpdatedAt = e.clock()
	if err := e.saveUser(ctx, user); err != nil {
		e.logger.Error().Err(err).Msg("reset token write failed")
		return "", ErrPasswordResetFailed
	}

	e.emitAudit(ctx, "password_reset_request", true, user.ID, "", nil, nil)
	return reset, nil
}

// ResetPassword consumes a reset token and installs newPassword with a
// fresh salt. The token is single use and expires after the configured
// TTL. All of the user's device sessions are removed so stolen
// sessions do not outlive the reset.
func (e *Engine) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		e.metricInc(metrics.MetricPasswordResetFailure)
		return ErrPasswordResetFailed
	}

	var user *User
	if err := e.forEachUser(ctx, func(u *User) bool {
		if u.Security.ResetToken != "" && credentials.ConstantTimeCompare(u.Security.ResetToken, resetToken) {
			user = u
			return false
		}
		return true
	}); err != nil {
		e.metricInc(metrics.MetricPasswordResetFailure)
		return ErrPasswordResetFailed
	}
	if user == nil || e.clock().After(user.Security.ResetTokenExpiresAt) {
		e.metricInc(metrics.MetricPasswordResetFailure)
		e.emitAudit(ctx, "password_reset", false, "", "", ErrPasswordResetFailed, nil)
		return ErrPasswordResetFailed
	}

	if err := e.rotatePassword(user, newPassword); err != nil {
		e.metricInc(metrics.MetricPasswordResetFailure)
		return err
	}
	user.Security.ResetToken = ""
	user.Security.ResetTokenExpiresAt = time.Time{}
	if err := e.saveUser(ctx, user); err != nil {
		e.metricInc(metrics.MetricPasswordResetFailure)
		e.logger.Error().Err(err).Msg("credential record write failed")
		return ErrPasswordResetFailed
	}

	if err := e.sessions.RemoveUser(ctx, user.ID); err != nil {
		e.logger.Warn().Err(err).Msg("session teardown failed")
	}
	if err := e.limiter.Reset(ctx, user.Email); err != nil {
		e.logger.Warn().Err(err).Msg("lockout reset failed")
	}

	e.metricInc(metrics.MetricPasswordResetSuccess)
	e.emitAudit(ctx, "password_reset", true, user.ID, "", nil, nil)
	return nil
}

// rotatePassword validates newPassword against the account policy and
// recent history, then installs it under a fresh salt. The caller
// persists the record.
func (e *Engine) rotatePassword(user *User, newPassword string) error {
	if v := credentials.ValidatePassword(newPassword, user.Username); !v.Valid {
		return authError(KindInvalidCredentials, strings.Join(v.Errors, "; "))
	}
	if e.hasher.Verify(newPassword, user.PasswordHash, user.Salt) {
		return authError(KindInvalidCredentials, "new password must differ from the current one")
	}
	for _, entry := range user.PasswordHistory {
		salt, hash, ok := strings.Cut(entry, ":")
		if ok && e.hasher.Verify(newPassword, hash, salt) {
			return authError(KindInvalidCredentials, "password was used recently")
		}
	}

	salt, err := e.hasher.GenerateSalt()
	if err != nil {
		return ErrPasswordResetFailed
	}
	hash, err := e.hasher.Hash(newPassword, salt)
	if err != nil {
		return ErrPasswordResetFailed
	}

	history := append([]string{user.Salt + ":" + user.PasswordHash}, user.PasswordHistory...)
	if depth := e.config.Account.PasswordHistory; len(history) > depth {
		history = history[:depth]
	}
	user.PasswordHistory = history
	user.Salt = salt
	user.PasswordHash = hash
	user.Security.LastPasswordChangeAt = e.clock()
	user.UpdatedAt = e.clock()
	return nil
}
