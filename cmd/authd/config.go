package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// config is the daemon's environment-driven configuration. A .env file in
// the working directory is loaded first when present; real environment
// variables win.
type config struct {
	ListenAddr  string `env:"AUTHD_LISTEN_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"AUTHD_METRICS_ADDR" envDefault:":9090"`

	RedisAddr     string `env:"AUTHD_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"AUTHD_REDIS_PASSWORD"`
	RedisDB       int    `env:"AUTHD_REDIS_DB" envDefault:"0"`

	PostgresDSN string `env:"AUTHD_POSTGRES_DSN,required"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	SecureCookies bool   `env:"AUTHD_SECURE_COOKIES" envDefault:"true"`
	KeyPrefix     string `env:"AUTHD_KEY_PREFIX" envDefault:"ta"`
	ClearOnReuse  bool   `env:"AUTHD_CLEAR_ON_REUSE" envDefault:"false"`

	LogLevel string `env:"AUTHD_LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (config, error) {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.AccessTokenTTL >= cfg.RefreshTokenTTL {
		return config{}, fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	return cfg, nil
}
