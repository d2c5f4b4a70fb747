package tubeauth

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/streamforge/tubeauth/credstore"
	"github.com/streamforge/tubeauth/internal/rate"
	"github.com/streamforge/tubeauth/password"
	"github.com/streamforge/tubeauth/token"
)

// Engine is the façade over the authentication flows. Construct it through
// the Builder; a zero-value Engine returns ErrEngineNotReady from every
// operation. All methods are safe for concurrent use.
type Engine struct {
	config       Config
	tokens       *token.Codec
	passwords    *password.Hasher
	creds        *credstore.Store
	rateLimiter  *rate.Limiter
	audit        *auditDispatcher
	metrics      *Metrics
	userProvider UserProvider
}

func (e *Engine) ready() bool {
	return e != nil && e.tokens != nil && e.passwords != nil && e.creds != nil && e.userProvider != nil
}

// Close flushes and stops the audit dispatcher. Idempotent.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped due to dispatcher
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Ping checks credential-store reachability and returns the round-trip
// latency.
func (e *Engine) Ping(ctx context.Context) (time.Duration, error) {
	if !e.ready() {
		return 0, ErrEngineNotReady
	}
	return e.creds.Ping(ctx)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// hashToken reduces a refresh token string to the 32-byte digest stored in
// the credential record. Raw tokens never reach Redis.
func hashToken(tokenStr string) [32]byte {
	return sha256.Sum256([]byte(tokenStr))
}
