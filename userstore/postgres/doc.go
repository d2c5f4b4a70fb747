// Package postgres implements the engine's UserProvider against a Postgres
// users table via pgx. It is the reference provider; callers with another
// user database implement tubeauth.UserProvider themselves.
package postgres
