package tubeauth

import (
	"context"
	"io"

	internalaudit "github.com/streamforge/tubeauth/internal/audit"
)

// UserRecord is the account view the engine needs from the platform's user
// database: identity, credential hash, and the profile fields handed to
// downstream handlers after the gate resolves a request.
type UserRecord struct {
	UserID       string
	Username     string
	Email        string
	FullName     string
	AvatarURL    string
	PasswordHash string
}

// UserProvider is the collaborator interface callers implement to connect
// the engine to their user database. Lookups by identifier accept either a
// username or an email address. Implementations return ErrUserNotFound for
// missing accounts and may wrap their own errors for infrastructure faults.
type UserProvider interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
}

// TokenPair is the client-side session: both values are set (or cleared)
// together, never one without the other.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives AuditEvent values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an AuditSink that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based AuditSink.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an AuditSink that writes JSON-encoded events, one per
// line, to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a JSONWriterSink that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
