package tubeauth

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero access TTL", func(c *Config) { c.Token.AccessTTL = 0 }},
		{"access TTL not shorter than refresh", func(c *Config) { c.Token.AccessTTL = c.Token.RefreshTTL }},
		{"empty key prefix", func(c *Config) { c.KeyPrefix = "" }},
		{"login throttle without cooldown", func(c *Config) {
			c.RateLimit.MaxLoginAttempts = 5
			c.RateLimit.LoginCooldown = 0
		}},
		{"refresh throttle without attempts", func(c *Config) {
			c.RateLimit.EnableRefreshThrottle = true
			c.RateLimit.MaxRefreshAttempts = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestBuilderRequirements(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Error("Build without redis must fail")
	}

	env := newTestEngine(t, nil)

	b := New().
		WithConfig(testEngineConfig()).
		WithRedis(env.redis).
		WithUserProvider(env.users)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Error("a builder must be single-use")
	}
}

func TestBuilderRejectsBadTokenConfig(t *testing.T) {
	env := newTestEngine(t, nil)

	cfg := testEngineConfig()
	cfg.Token.AccessKey = nil

	_, err := New().
		WithConfig(cfg).
		WithRedis(env.redis).
		WithUserProvider(env.users).
		Build()
	if err == nil {
		t.Error("Build must reject missing signing keys")
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Token.AccessTTL != 15*time.Minute {
		t.Errorf("AccessTTL = %v", cfg.Token.AccessTTL)
	}
	if cfg.Token.RefreshTTL != 7*24*time.Hour {
		t.Errorf("RefreshTTL = %v", cfg.Token.RefreshTTL)
	}
	if !cfg.RehashOnLogin {
		t.Error("RehashOnLogin should default on")
	}
	if cfg.ClearOnReuse {
		t.Error("ClearOnReuse should default off")
	}
}
