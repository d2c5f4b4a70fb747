// Package password hashes and verifies login passwords with argon2id.
// Hashes are stored in PHC string format so parameters travel with the
// hash; verification recomputes the key and compares in constant time.
// Mismatch is a normal false result, never an error.
package password
