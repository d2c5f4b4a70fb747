// Package middleware exposes HTTP middleware built on top of the engine's
// access-token validation.
//
// # Guards
//
//   - [Gate] — validates the access token from the accessToken cookie or the
//     Authorization header and injects the resolved user into the request
//     context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.ValidateAccess.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the engine).
//   - Access Redis (the engine handles I/O).
//   - Reveal why a request was rejected: every denial is a generic 401.
package middleware
