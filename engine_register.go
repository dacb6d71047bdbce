package authcore

import (
	"context"
	"strings"

	"github.com/MrEthical07/authcore/credentials"
	"github.com/MrEthical07/authcore/metrics"
	"github.com/MrEthical07/authcore/store"

	"github.com/google/uuid"
)

// Register creates a credential record. The password must pass the
// account policy (checked against the username), and both email and
// username must be unused. New accounts are unverified and carry a
// one-time verification token the caller is expected to deliver.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" {
		e.metricInc(metrics.MetricRegisterFailure)
		return nil, authError(KindInvalidCredentials, "email and username are required")
	}

	if v := credentials.ValidatePassword(req.Password, username); !v.Valid {
		e.metricInc(metrics.MetricRegisterFailure)
		e.emitAudit(ctx, "register", false, "", "", ErrInvalidCredentials, map[string]string{
			"reason": "password_policy",
		})
		return nil, authError(KindInvalidCredentials, strings.Join(v.Errors, "; "))
	}

	if e.identityTaken(ctx, store.UserEmailPrefix, email) {
		e.metricInc(metrics.MetricRegisterFailure)
		return nil, authError(KindInvalidCredentials, "email already registered")
	}
	if e.identityTaken(ctx, store.UserUsernamePrefix, username) {
		e.metricInc(metrics.MetricRegisterFailure)
		return nil, authError(KindInvalidCredentials, "username already taken")
	}

	role := req.Role
	if role == "" {
		role = e.config.Account.DefaultRole
	}
	if !e.roles.known(role) {
		e.metricInc(metrics.MetricRegisterFailure)
		return nil, authError(KindRegistrationFailed, "unknown role")
	}

	salt, err := e.hasher.GenerateSalt()
	if err != nil {
		e.metricInc(metrics.MetricRegisterFailure)
		e.logger.Error().Err(err).Msg("salt generation failed")
		return nil, ErrRegistrationFailed
	}
	hash, err := e.hasher.Hash(req.Password, salt)
	if err != nil {
		e.metricInc(metrics.MetricRegisterFailure)
		return nil, ErrRegistrationFailed
	}

	verification, err := credentials.GenerateSecureToken(32)
	if err != nil {
		e.metricInc(metrics.MetricRegisterFailure)
		return nil, ErrRegistrationFailed
	}

	now := e.clock()
	user := &User{
		ID:                uuid.NewString(),
		Email:             email,
		Username:          username,
		PasswordHash:      hash,
		Salt:              salt,
		Role:              role,
		Permissions:       e.roles.permissionsFor(role),
		Profile:           req.Profile,
		IsActive:          true,
		IsVerified:        false,
		VerificationToken: verification,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := e.saveUserIndexed(ctx, user); err != nil {
		e.metricInc(metrics.MetricRegisterFailure)
		e.logger.Error().Err(err).Msg("credential record write failed")
		return nil, ErrRegistrationFailed
	}

	e.metricInc(metrics.MetricRegisterSuccess)
	e.emitAudit(ctx, "register", true, user.ID, "", nil, map[string]string{
		"username": username,
	})

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// VerificationToken returns the pending email-verification token for a
// user id, or "". The embedding application delivers it out of band.
func (e *Engine) VerificationToken(ctx context.Context, userID string) string {
	user, err := e.loadUser(ctx, userID)
	if err != nil || user == nil {
		return ""
	}
	return user.VerificationToken
}

func (e *Engine) identityTaken(ctx context.Context, prefix, identity string) bool {
	_, found, err := e.store.Get(ctx, prefix+normalizeIdentity(identity))
	if err != nil {
		// Degraded store: refusing registration here would make an
		// outage indistinguishable from a duplicate. Log and allow.
		e.logger.Warn().Err(err).Msg("duplicate check read failed")
		return false
	}
	return found
}
