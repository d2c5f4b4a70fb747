package tubeauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamforge/tubeauth/credstore"
	"github.com/streamforge/tubeauth/internal/rate"
	"github.com/streamforge/tubeauth/token"
)

// Refresh rotates a refresh token: the presented token must carry a valid
// signature AND its hash must win the compare-and-swap against the
// account's credential record. Exactly one concurrent caller presenting
// the same token succeeds; every other caller gets ErrTokenReused.
//
// The new pair is minted before the swap, so a successful swap is the last
// fallible step: the caller either receives the full pair or the old
// token remains unusable.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, "", false, "invalid_token", nil)
		return TokenPair{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID := claims.UserID

	if err := e.rateLimiter.CheckRefresh(ctx, userID); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricRefreshRateLimited)
			e.emitAudit(ctx, auditEventRefreshRateLimited, userID, false, "rate_limited", nil)
			return TokenPair{}, ErrRefreshRateLimited
		}
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	nextRefresh, err := e.tokens.Mint(userID, token.KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	nextAccess, err := e.tokens.Mint(userID, token.KindAccess)
	if err != nil {
		return TokenPair{}, err
	}

	record, err := e.creds.Rotate(
		ctx,
		userID,
		hashToken(refreshToken),
		hashToken(nextRefresh),
		e.config.Token.RefreshTTL,
		e.config.ClearOnReuse,
	)
	if err != nil {
		return TokenPair{}, e.classifyRotateError(ctx, userID, err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.metricInc(MetricPairIssued)
	e.emitAudit(ctx, auditEventRefreshSuccess, userID, true, "", map[string]string{
		"token_version": fmt.Sprintf("%d", record.TokenVersion),
	})

	return TokenPair{
		AccessToken:  nextAccess,
		RefreshToken: nextRefresh,
	}, nil
}

func (e *Engine) classifyRotateError(ctx context.Context, userID string, err error) error {
	switch {
	case errors.Is(err, credstore.ErrHashMismatch):
		e.metricInc(MetricRefreshReuseDetected)
		e.emitAudit(ctx, auditEventRefreshReuseDetected, userID, false, "refresh_reuse", nil)
		return ErrTokenReused
	case errors.Is(err, credstore.ErrRecordNotFound), errors.Is(err, credstore.ErrRecordExpired):
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, userID, false, "no_credential_record", nil)
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
