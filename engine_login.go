package tubeauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/streamforge/tubeauth/internal/rate"
	"github.com/streamforge/tubeauth/token"
)

// Login authenticates identifier+password and, on success, issues a fresh
// token pair and installs its refresh hash as the single honorable
// credential for the account. Any previously issued refresh token is
// superseded immediately.
//
// Unknown identifier and wrong password are indistinguishable to the
// caller: both return ErrInvalidCredentials after a failed-attempt counter
// increment.
func (e *Engine) Login(ctx context.Context, identifier, pass string) (UserRecord, TokenPair, error) {
	if !e.ready() {
		return UserRecord{}, TokenPair{}, ErrEngineNotReady
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || pass == "" {
		e.metricInc(MetricLoginFailure)
		return UserRecord{}, TokenPair{}, ErrInvalidCredentials
	}

	ip := clientIPFromContext(ctx)

	if err := e.rateLimiter.CheckLogin(ctx, identifier, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, "", false, "rate_limited", nil)
			return UserRecord{}, TokenPair{}, ErrLoginRateLimited
		}
		return UserRecord{}, TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	user, err := e.userProvider.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return UserRecord{}, TokenPair{}, e.failLogin(ctx, identifier, ip, "")
		}
		return UserRecord{}, TokenPair{}, err
	}

	ok, err := e.passwords.Verify(pass, user.PasswordHash)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, user.UserID, false, "invalid_stored_hash", nil)
		return UserRecord{}, TokenPair{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return UserRecord{}, TokenPair{}, e.failLogin(ctx, identifier, ip, user.UserID)
	}

	if e.config.RehashOnLogin {
		e.maybeRehash(ctx, user, pass)
	}

	pair, err := e.issuePair(ctx, user.UserID)
	if err != nil {
		return UserRecord{}, TokenPair{}, err
	}

	// Best effort: a stale failure counter must not fail a good login.
	_ = e.rateLimiter.ResetLogin(ctx, identifier, ip)

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, user.UserID, true, "", nil)

	return user, pair, nil
}

func (e *Engine) failLogin(ctx context.Context, identifier, ip, userID string) error {
	incErr := e.rateLimiter.IncrementLogin(ctx, identifier, ip)

	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, userID, false, "invalid_credentials", nil)

	if errors.Is(incErr, rate.ErrRateLimited) {
		e.metricInc(MetricLoginRateLimited)
		return ErrLoginRateLimited
	}
	return ErrInvalidCredentials
}

// maybeRehash upgrades the stored password hash when it was produced with
// weaker parameters than currently configured. Best effort only.
func (e *Engine) maybeRehash(ctx context.Context, user UserRecord, pass string) {
	needs, err := e.passwords.NeedsRehash(user.PasswordHash)
	if err != nil || !needs {
		return
	}
	newHash, err := e.passwords.Hash(pass)
	if err != nil {
		return
	}
	_ = e.userProvider.UpdatePasswordHash(ctx, user.UserID, newHash)
}

// issuePair mints a refresh+access pair and installs the refresh hash as
// the account's credential record.
func (e *Engine) issuePair(ctx context.Context, userID string) (TokenPair, error) {
	refreshToken, err := e.tokens.Mint(userID, token.KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	accessToken, err := e.tokens.Mint(userID, token.KindAccess)
	if err != nil {
		return TokenPair{}, err
	}

	if _, err := e.creds.Put(ctx, userID, hashToken(refreshToken), e.config.Token.RefreshTTL); err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricPairIssued)

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
