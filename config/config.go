// Package config loads process configuration from the environment.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// EnvPrefix is prepended to every variable name, like PROFILES_PORT.
const EnvPrefix = "PROFILES_"

type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	// LogLevel and friends are passed to logctx.NewLogger.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`
	LogFile   string `env:"LOG_FILE"`

	// SeedFile is a json array of profiles created at startup.
	SeedFile        string `env:"SEED_FILE"`
	SeedParallelism int    `env:"SEED_PARALLELISM" envDefault:"4"`
	// SeedWait is how long profile requests wait for seeding to finish
	// before failing with a 503.
	SeedWait time.Duration `env:"SEED_WAIT" envDefault:"30s"`

	CorsOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
	BodyLimit   string   `env:"BODY_LIMIT" envDefault:"1M"`
	// DebugHTTP dumps request and response bodies and headers at debug level.
	DebugHTTP bool `env:"DEBUG_HTTP"`

	BuildSha  string `env:"BUILD_SHA" envDefault:"not configured"`
	BuildTime string `env:"BUILD_TIME"`
}

// Load reads the given .env files (or ".env" if none are given),
// then parses the environment into a Config.
// Missing .env files are fine; variables already in the environment win.
func Load(envFiles ...string) (Config, error) {
	// Ignore errors; the .env file might not exist and that's ok
	_ = godotenv.Load(envFiles...)
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, errors.Wrap(err, "parsing environment")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("%sPORT %d is out of range", EnvPrefix, c.Port)
	}
	if c.SeedParallelism <= 0 {
		return errors.Errorf("%sSEED_PARALLELISM must be positive, got %d", EnvPrefix, c.SeedParallelism)
	}
	return nil
}

// Addr is the host:port to listen on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
