package tubeauth

import (
	"errors"
	"time"

	"github.com/streamforge/tubeauth/password"
	"github.com/streamforge/tubeauth/token"
)

// Config is the engine configuration. Values are copied at Build time and
// treated as immutable afterwards; the signing keys in Token are loaded once
// at process start — rotating them invalidates every outstanding token,
// which is a deliberate mass-invalidation event, not an error path.
type Config struct {
	Token    token.Config
	Password password.Config

	// KeyPrefix namespaces the engine's Redis keys.
	KeyPrefix string

	// ClearOnReuse additionally clears the credential record when a refresh
	// CAS mismatch is detected, forcing a full re-login for the account.
	// Defensive policy, off by default: reuse is rejected either way.
	ClearOnReuse bool

	// RehashOnLogin re-hashes the password during login when the stored hash
	// was produced with weaker cost parameters than currently configured.
	RehashOnLogin bool

	RateLimit RateLimitConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

// RateLimitConfig tunes the fixed-window Redis limiters for login and
// refresh. Zero attempts disable the corresponding limiter.
type RateLimitConfig struct {
	MaxLoginAttempts      int
	LoginCooldown         time.Duration
	EnableIPThrottle      bool
	MaxRefreshAttempts    int
	RefreshCooldown       time.Duration
	EnableRefreshThrottle bool
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns a development-oriented configuration. Signing keys
// are intentionally absent and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Token: token.Config{
			SigningMethod: token.MethodHS256,
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			Issuer:        "tubeauth",
		},
		Password: password.Config{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		KeyPrefix:     "ta",
		RehashOnLogin: true,
		RateLimit: RateLimitConfig{
			MaxLoginAttempts:      10,
			LoginCooldown:         5 * time.Minute,
			EnableIPThrottle:      true,
			MaxRefreshAttempts:    30,
			RefreshCooldown:       time.Minute,
			EnableRefreshThrottle: true,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate checks invariants Build relies on.
func (c Config) Validate() error {
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Token.AccessTTL >= c.Token.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}
	if c.KeyPrefix == "" {
		return errors.New("key prefix must not be empty")
	}
	if c.RateLimit.MaxLoginAttempts > 0 && c.RateLimit.LoginCooldown <= 0 {
		return errors.New("login cooldown must be positive when login throttling is enabled")
	}
	if c.RateLimit.EnableRefreshThrottle {
		if c.RateLimit.MaxRefreshAttempts <= 0 || c.RateLimit.RefreshCooldown <= 0 {
			return errors.New("refresh throttle requires positive attempts and cooldown")
		}
	}
	return nil
}
