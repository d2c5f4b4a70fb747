package tubeauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamforge/tubeauth/token"
)

// ValidateAccess checks an access token and resolves it to the account it
// was issued for. Validation is stateless: the credential store is never
// consulted, so the hot path costs one signature check plus one user
// lookup. Every failure collapses to ErrUnauthorized for the caller; the
// specific reason is observable through audit events only.
func (e *Engine) ValidateAccess(ctx context.Context, accessToken string) (UserRecord, error) {
	if !e.ready() {
		return UserRecord{}, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(accessToken, token.KindAccess)
	if err != nil {
		e.metricInc(MetricGateDenied)
		e.emitAudit(ctx, auditEventGateDenied, "", false, "invalid_token", nil)
		return UserRecord{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := e.userProvider.GetUserByID(ctx, claims.UserID)
	if err != nil {
		e.metricInc(MetricGateDenied)
		if errors.Is(err, ErrUserNotFound) {
			// Well-signed token for a deleted account.
			e.emitAudit(ctx, auditEventGateDenied, claims.UserID, false, "user_not_found", nil)
			return UserRecord{}, ErrUnauthorized
		}
		return UserRecord{}, err
	}

	e.metricInc(MetricGateAllowed)

	return user, nil
}
