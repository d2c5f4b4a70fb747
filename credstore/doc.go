// Package credstore persists one credential record per user in Redis: the
// SHA-256 of the currently honorable refresh token plus a monotonically
// increasing rotation version. It is the only place refresh-token state
// lives server-side.
//
// Rotation is a single Lua compare-and-swap: the stored hash must equal the
// presented hash or the script reports a mismatch without writing. Under
// concurrent rotation attempts with the same token exactly one caller
// observes success; every loser sees the mismatch status. No caller ever
// reads the record and writes it back outside the script.
//
// Record wire format (fixed offsets so the Lua script can splice in place):
//
//	byte  1      schema version (1)
//	bytes 2-5    rotation version, uint32 big-endian
//	bytes 6-37   refresh token hash, 32 bytes
//	bytes 38-45  rotated-at unix seconds, int64 big-endian
//	bytes 46-53  expires-at unix seconds, int64 big-endian
package credstore
