// Package token mints and verifies the signed, time-bound credentials the
// engine hands out: short-lived access tokens and longer-lived refresh
// tokens, distinguished by a kind claim so that one can never stand in for
// the other.
//
// Verification is pure: it checks encoding, signature, kind, and expiry and
// never consults any store. Each failure reason is a distinct sentinel error
// so callers can report reasons separately while returning a generic
// rejection to clients.
package token
