package tubeauth

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for an unknown identifier or
	// a wrong password. The two cases are deliberately indistinguishable so
	// that login failures cannot be used for user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized covers every non-retryable token failure: missing,
	// malformed, tampered, expired, wrong kind, or a subject that no longer
	// resolves to an account. The precise reason is available through audit
	// events, never through the error returned to the caller.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenReused is returned by Refresh when the presented refresh token
	// carries a valid signature but lost the compare-and-swap against the
	// credential record: it was already rotated, superseded by a newer login,
	// or cleared by logout. Potential theft signal.
	ErrTokenReused = errors.New("refresh token reuse detected")

	// ErrUserNotFound is the sentinel UserProvider implementations return
	// when no account matches a lookup. The engine never leaks it to clients.
	ErrUserNotFound = errors.New("user not found")

	// ErrStoreUnavailable marks transient credential-store or limiter
	// failures. Retryable, unlike the authentication failures above.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// ErrLoginRateLimited is returned when login attempts for an identifier
	// or source IP exceed the configured window.
	ErrLoginRateLimited = errors.New("login rate limited")

	// ErrRefreshRateLimited is returned when refresh attempts for a user
	// exceed the configured window.
	ErrRefreshRateLimited = errors.New("refresh rate limited")

	// ErrEngineNotReady is returned when the engine is used before Build
	// completed. Configuration fault, not a caller error.
	ErrEngineNotReady = errors.New("engine not initialized")
)
