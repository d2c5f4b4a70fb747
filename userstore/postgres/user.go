package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamforge/tubeauth"
)

var _ tubeauth.UserProvider = (*UserRepository)(nil)

// querier is the subset of pgxpool.Pool the repository needs; tests swap in
// a stub.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UserRepository resolves accounts from the users table.
type UserRepository struct {
	db querier
}

// NewUserRepository wraps a pgx pool.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// full_name and avatar_url are nullable; coalesce so the scan targets stay
// plain strings.
const userColumns = `id, username, email, COALESCE(full_name, ''), COALESCE(avatar_url, ''), password_hash`

// GetUserByIdentifier looks an account up by username or email.
func (r *UserRepository) GetUserByIdentifier(ctx context.Context, identifier string) (tubeauth.UserRecord, error) {
	query := `SELECT ` + userColumns + `
			  FROM users WHERE (username = $1 OR email = $1) AND deleted_at IS NULL`

	return r.scanUser(r.db.QueryRow(ctx, query, identifier))
}

// GetUserByID looks an account up by primary key.
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (tubeauth.UserRecord, error) {
	query := `SELECT ` + userColumns + `
			  FROM users WHERE id = $1 AND deleted_at IS NULL`

	return r.scanUser(r.db.QueryRow(ctx, query, userID))
}

// UpdatePasswordHash replaces the stored credential hash, used by the
// engine's transparent rehash-on-login upgrade.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, userID, newHash)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tubeauth.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (tubeauth.UserRecord, error) {
	var user tubeauth.UserRecord
	err := row.Scan(
		&user.UserID, &user.Username, &user.Email, &user.FullName, &user.AvatarURL, &user.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tubeauth.UserRecord{}, tubeauth.ErrUserNotFound
		}
		return tubeauth.UserRecord{}, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
