// Package rate provides Redis-backed fixed-window rate limiting for the
// login and refresh flows.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefixes:
//   - al:  — login failures per identifier
//   - ali: — login failures per client IP
//   - ar:  — refresh attempts per user
//
// Login counters track failures only and are cleared on successful login;
// refresh counters track every attempt.
//
// # What this package must NOT do
//
//   - Decide which operations to throttle (the engine flows do).
//   - Be imported outside the tubeauth module.
package rate
