package tubeauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/streamforge/tubeauth/credstore"
	"github.com/streamforge/tubeauth/internal/rate"
	"github.com/streamforge/tubeauth/password"
	"github.com/streamforge/tubeauth/token"
)

// Builder assembles an Engine. A Builder is single-use: Build consumes it.
//
//	engine, err := tubeauth.New().
//		WithConfig(cfg).
//		WithRedis(client).
//		WithUserProvider(users).
//		Build()
type Builder struct {
	config       Config
	redis        redis.UniversalClient
	userProvider UserProvider
	auditSink    AuditSink
	built        bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the credential store and the rate
// limiters.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider connects the engine to the caller's user database.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink sets the destination for audit events. Ignored when auditing
// is disabled; defaults to a NoOpSink otherwise.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires all components, and returns a
// ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(b.config.Token)
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(b.config.Password)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       b.config,
		tokens:       codec,
		passwords:    hasher,
		creds:        credstore.NewStore(b.redis, b.config.KeyPrefix),
		userProvider: b.userProvider,
	}

	engine.rateLimiter = rate.New(b.redis, rate.Config{
		EnableIPThrottle:        b.config.RateLimit.EnableIPThrottle,
		EnableRefreshThrottle:   b.config.RateLimit.EnableRefreshThrottle,
		MaxLoginAttempts:        b.config.RateLimit.MaxLoginAttempts,
		LoginCooldownDuration:   b.config.RateLimit.LoginCooldown,
		MaxRefreshAttempts:      b.config.RateLimit.MaxRefreshAttempts,
		RefreshCooldownDuration: b.config.RateLimit.RefreshCooldown,
	})
	engine.audit = newAuditDispatcher(b.config.Audit, b.auditSink)
	engine.metrics = NewMetrics(b.config.Metrics)

	b.built = true

	return engine, nil
}
