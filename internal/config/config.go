// Package config provides configuration loading using koanf.
// Precedence: environment variables over compiled defaults.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/aelexs/timegate/internal/domain"
)

// Config holds all service configuration.
type Config struct {
	// Environment identifier: "local", "dev", "prod"
	Environment string `koanf:"environment"`

	// Logging configuration
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"` // "json" or "text"; empty picks by environment

	// Service configuration
	TimeGate   TimeGateConfig   `koanf:"timegate"`
	TimeSource TimeSourceConfig `koanf:"timesource"`

	// Infrastructure configurations
	Redis  RedisConfig  `koanf:"redis"`
	Remote RemoteConfig `koanf:"remote"`

	// OpenTelemetry configuration
	OTEL OTELConfig `koanf:"otel"`
}

// TimeGateConfig holds the timegate service listener configuration.
type TimeGateConfig struct {
	HTTPPort int `koanf:"http_port"`
	GRPCPort int `koanf:"grpc_port"`
}

// TimeSourceConfig selects the adapter behind the TimeSource gateway.
type TimeSourceConfig struct {
	Kind domain.TimeSourceKind `koanf:"kind"`
}

// RedisConfig holds Redis configuration for the redis time source.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Timeout  time.Duration `koanf:"timeout"`
}

// RemoteConfig points the remote time source at another timegate.
type RemoteConfig struct {
	Target  string        `koanf:"target"` // gRPC target, e.g. "timegate:9095"
	Timeout time.Duration `koanf:"timeout"`
}

// OTELConfig holds OpenTelemetry configuration.
type OTELConfig struct {
	Endpoint    string `koanf:"endpoint"` // Empty disables OTLP export
	ServiceName string `koanf:"service_name"`
}

// sections lists the nested keys. An env var whose lower-cased name starts
// with "<section>_" has that first underscore turned into the koanf delimiter,
// so REDIS_ADDR maps to redis.addr and TIMEGATE_HTTP_PORT to
// timegate.http_port.
var sections = []string{"timegate", "timesource", "redis", "remote", "otel"}

// defaults returns a Config with compiled default values.
func defaults() *Config {
	return &Config{
		Environment: "local",
		LogLevel:    "info",

		TimeGate: TimeGateConfig{
			HTTPPort: 8085,
			GRPCPort: 9095,
		},
		TimeSource: TimeSourceConfig{
			Kind: domain.TimeSourceSystem,
		},

		Redis: RedisConfig{
			Addr:    "localhost:6379",
			DB:      0,
			Timeout: domain.RedisTimeout,
		},
		Remote: RemoteConfig{
			Timeout: domain.GRPCCallTimeout,
		},
		OTEL: OTELConfig{
			ServiceName: "timegate",
		},
	}
}

// Load loads configuration following the precedence:
// 1. Environment variables (highest)
// 2. Compiled defaults (lowest)
//
// A missing required key or an unknown time source kind is a startup failure.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	cfg := defaults()

	err := k.Load(env.Provider("", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps an environment variable name to a koanf key path.
func envKey(s string) string {
	key := strings.ToLower(s)
	for _, section := range sections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// Validate checks the time source selection and the keys it requires.
// Callers that override fields after Load should validate again.
func (c *Config) Validate() error {
	if !domain.IsValidTimeSourceKind(c.TimeSource.Kind) {
		return fmt.Errorf("%w: timesource.kind %q", domain.ErrInvalidConfig, c.TimeSource.Kind)
	}

	switch c.TimeSource.Kind {
	case domain.TimeSourceRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis.addr", domain.ErrConfigRequired)
		}
	case domain.TimeSourceRemote:
		if c.Remote.Target == "" {
			return fmt.Errorf("%w: remote.target", domain.ErrConfigRequired)
		}
	}

	return nil
}

// IsLocal returns true if running in local development environment.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}

// ResolvedLogFormat returns LogFormat, or when unset, "text" for local
// development and "json" everywhere else.
func (c *Config) ResolvedLogFormat() string {
	if c.LogFormat != "" {
		return c.LogFormat
	}
	if c.IsLocal() {
		return "text"
	}
	return "json"
}
