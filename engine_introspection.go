package authcore

import (
	"context"
	"slices"
)

// CurrentUser resolves the stored access token to its credential
// record. Returns nil without error when no valid token is stored,
// which callers treat as "not signed in". Store failures are logged
// and absorbed into the same nil result; this path never errors.
func (e *Engine) CurrentUser(ctx context.Context) (*User, error) {
	access, _, err := e.tokenStorage.Load(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("token storage read failed")
		return nil, nil
	}
	if access == "" {
		return nil, nil
	}
	claims, err := e.tokens.Validate(access)
	if err != nil {
		return nil, nil
	}
	user, err := e.loadUser(ctx, claims.Subject)
	if err != nil {
		e.logger.Warn().Err(err).Msg("credential record read failed")
		return nil, nil
	}
	if user == nil {
		return nil, nil
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// ValidateSession reports whether the session is live and, when it is,
// bumps its activity timestamp so the idle window restarts.
func (e *Engine) ValidateSession(ctx context.Context, sessionID string) bool {
	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil || sess == nil {
		return false
	}
	if err := e.sessions.Touch(ctx, sessionID); err != nil {
		e.logger.Warn().Err(err).Msg("activity bump failed")
	}
	return true
}

// HasPermission reports whether the user holds the named permission.
// The SUPER_ADMIN role passes every check regardless of its
// permission list.
func (e *Engine) HasPermission(ctx context.Context, userID, permission string) bool {
	user, err := e.loadUser(ctx, userID)
	if err != nil || user == nil {
		return false
	}
	if user.Role == RoleSuperAdmin {
		return true
	}
	return slices.Contains(user.Permissions, permission)
}

// UpdateProfile replaces the user's profile fields and returns the
// sanitized record. Credential material is untouched.
func (e *Engine) UpdateProfile(ctx context.Context, userID string, profile Profile) (*User, error) {
	user, err := e.loadUser(ctx, userID)
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}

	user.Profile = profile
	user.UpdatedAt = e.clock()
	if err := e.saveUser(ctx, user); err != nil {
		e.logger.Error().Err(err).Msg("credential record write failed")
		return nil, ErrProfileUpdateFailed
	}

	e.emitAudit(ctx, "profile_update", true, user.ID, "", nil, nil)
	sanitized := user.Sanitized()
	return &sanitized, nil
}
