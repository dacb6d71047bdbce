package authcore

import (
	"context"

	"github.com/MrEthical07/authcore/metrics"
	"github.com/MrEthical07/authcore/session"
	"github.com/MrEthical07/authcore/token"
)

// RefreshAccessToken rotates the stored refresh token into a new
// access/refresh pair. The rotation keeps the original token family
// and re-reads role and permissions from the credential record, so a
// role change takes effect on the next refresh. The new pair replaces
// the stored one and the provider session singleton is updated in
// place.
func (e *Engine) RefreshAccessToken(ctx context.Context) (*token.Pair, error) {
	_, refresh, err := e.tokenStorage.Load(ctx)
	if err != nil {
		e.metricInc(metrics.MetricRefreshFailure)
		e.logger.Warn().Err(err).Msg("token storage read failed")
		return nil, ErrTokenInvalid
	}
	if refresh == "" {
		e.metricInc(metrics.MetricRefreshFailure)
		return nil, ErrTokenInvalid
	}

	pair, err := e.tokens.Rotate(refresh, func(subject string) (token.Identity, bool) {
		user, err := e.loadUser(ctx, subject)
		if err != nil || user == nil || !user.IsActive {
			return token.Identity{}, false
		}
		return token.Identity{
			Email:       user.Email,
			Role:        user.Role,
			Permissions: user.Permissions,
		}, true
	})
	if err != nil {
		e.metricInc(metrics.MetricRefreshFailure)
		e.emitAudit(ctx, "token_refresh", false, "", "", err, nil)
		return nil, ErrTokenInvalid
	}

	if err := e.tokenStorage.Save(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		e.logger.Warn().Err(err).Msg("token storage write failed")
	}
	if err := e.sessions.UpdateSession(ctx, session.ProviderSession{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    e.clock().Unix() + int64(e.tokens.AccessTTL().Seconds()),
	}); err != nil {
		e.logger.Warn().Err(err).Msg("provider session update failed")
	}

	claims := e.tokens.Decode(pair.AccessToken)
	userID := ""
	if claims != nil {
		userID = claims.Subject
	}
	e.metricInc(metrics.MetricRefreshSuccess)
	e.emitAudit(ctx, "token_refresh", true, userID, "", nil, nil)
	return pair, nil
}
