// Package tubeauth implements the authentication core of a video-sharing
// platform backend: password login, issuance of a short-lived access token
// and a longer-lived rotating refresh token, atomic rotation-on-refresh with
// reuse detection, and stateless access-token validation for request gating.
//
// The engine keeps exactly one honorable refresh token per user at any
// instant. A refresh token's authority derives from its signature AND from
// bitwise equality with the credential record persisted in Redis; rotation
// swaps that record with a single Lua compare-and-swap, so a stolen token
// that has already been rotated is detected on its next use.
//
// Access tokens are validated purely cryptographically and are never stored
// server-side: a compromised access token is bounded by its TTL.
//
// Construction goes through the Builder:
//
//	engine, err := tubeauth.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithUserProvider(users).
//		Build()
package tubeauth
