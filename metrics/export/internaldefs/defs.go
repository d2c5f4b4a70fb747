package internaldefs

import (
	tubeauth "github.com/streamforge/tubeauth"
)

// CounterDef ties an engine counter to its exported metric name.
type CounterDef struct {
	ID   tubeauth.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: tubeauth.MetricLoginSuccess, Name: "tubeauth_login_success_total", Help: "Successful login attempts."},
	{ID: tubeauth.MetricLoginFailure, Name: "tubeauth_login_failure_total", Help: "Failed login attempts."},
	{ID: tubeauth.MetricLoginRateLimited, Name: "tubeauth_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: tubeauth.MetricRefreshSuccess, Name: "tubeauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: tubeauth.MetricRefreshFailure, Name: "tubeauth_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: tubeauth.MetricRefreshReuseDetected, Name: "tubeauth_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: tubeauth.MetricRefreshRateLimited, Name: "tubeauth_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: tubeauth.MetricPairIssued, Name: "tubeauth_pair_issued_total", Help: "Issued access+refresh token pairs."},
	{ID: tubeauth.MetricGateAllowed, Name: "tubeauth_gate_allowed_total", Help: "Requests admitted by access-token validation."},
	{ID: tubeauth.MetricGateDenied, Name: "tubeauth_gate_denied_total", Help: "Requests rejected by access-token validation."},
	{ID: tubeauth.MetricLogout, Name: "tubeauth_logout_total", Help: "Logout operations."},
}
