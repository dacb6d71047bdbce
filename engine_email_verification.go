package authcore

import (
	"context"

	"github.com/MrEthical07/authcore/credentials"
	"github.com/MrEthical07/authcore/metrics"
)

// VerifyEmail consumes a verification token issued at registration and
// marks the account verified. The token is single use; a second call
// with the same token fails.
func (e *Engine) VerifyEmail(ctx context.Context, verificationToken string) error {
	if verificationToken == "" {
		e.metricInc(metrics.MetricEmailVerificationFailure)
		return ErrEmailVerificationFailed
	}

	var user *User
	if err := e.forEachUser(ctx, func(u *User) bool {
		if u.VerificationToken != "" && credentials.ConstantTimeCompare(u.VerificationToken, verificationToken) {
			user = u
			return false
		}
		return true
	}); err != nil {
		e.metricInc(metrics.MetricEmailVerificationFailure)
		return ErrEmailVerificationFailed
	}
	if user == nil {
		e.metricInc(metrics.MetricEmailVerificationFailure)
		e.emitAudit(ctx, "email_verification", false, "", "", ErrEmailVerificationFailed, nil)
		return ErrEmailVerificationFailed
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.UpdatedAt = e.clock()
	if err := e.saveUser(ctx, user); err != nil {
		e.metricInc(metrics.MetricEmailVerificationFailure)
		e.logger.Error().Err(err).Msg("credential record write failed")
		return ErrEmailVerificationFailed
	}

	e.metricInc(metrics.MetricEmailVerificationSuccess)
	e.emitAudit(ctx, "email_verification", true, user.ID, "", nil, nil)
	return nil
}
