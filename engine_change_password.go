package authcore

import (
	"context"

	"github.com/MrEthical07/authcore/metrics"
)

// ChangePassword replaces a user's password after verifying the
// current one. The new password must pass the account policy and must
// not match the current password or recent history. Other device
// sessions keep running; only a reset tears them down.
func (e *Engine) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := e.loadUser(ctx, userID)
	if err != nil || user == nil {
		e.metricInc(metrics.MetricPasswordChangeFailure)
		return ErrInvalidCredentials
	}
	if !user.IsActive {
		e.metricInc(metrics.MetricPasswordChangeFailure)
		return ErrAccountInactive
	}
	if !e.hasher.Verify(currentPassword, user.PasswordHash, user.Salt) {
		e.metricInc(metrics.MetricPasswordChangeFailure)
		e.emitAudit(ctx, "password_change", false, user.ID, "", ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	if err := e.rotatePassword(user, newPassword); err != nil {
		e.metricInc(metrics.MetricPasswordChangeFailure)
		return err
	}
	if err := e.saveUser(ctx, user); err != nil {
		e.metricInc(metrics.MetricPasswordChangeFailure)
		e.logger.Error().Err(err).Msg("credential record write failed")
		return authError(KindPasswordResetFailed, "password change failed")
	}

	e.metricInc(metrics.MetricPasswordChangeSuccess)
	e.emitAudit(ctx, "password_change", true, user.ID, "", nil, nil)
	return nil
}
