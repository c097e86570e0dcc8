// Package config loads the application configuration from defaults, an
// optional YAML file, and FRAUDGRAPH_-prefixed environment variables, in
// that precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/mullbar/fraudgraph/internal/service/analysis"
)

const (
	envPrefix       = "FRAUDGRAPH_"
	defaultFilePath = "configs/config.yaml"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level" validate:"oneof=debug info warn error"`

	Server    ServerConfig    `koanf:"server"`
	Redis     RedisConfig     `koanf:"redis"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Security  SecurityConfig  `koanf:"security"`
	Analysis  analysis.Config `koanf:"analysis"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxUploadBytes bounds the accepted request body; oversized datasets
	// are rejected before parsing.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"gt=0"`
}

type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

type TelemetryConfig struct {
	Enabled      bool          `koanf:"enabled"`
	OTLPEndpoint string        `koanf:"otlp_endpoint"`
	SamplingRate float64       `koanf:"sampling_rate" validate:"gte=0,lte=1"`
	BatchTimeout time.Duration `koanf:"batch_timeout"`
}

type SecurityConfig struct {
	// AuthEnabled turns on JWT bearer verification for the analyze
	// endpoint. Health and metrics stay open either way.
	AuthEnabled bool            `koanf:"auth_enabled"`
	JWTSecret   string          `koanf:"jwt_secret"`
	RateLimit   RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second" validate:"gt=0"`
	BurstSize         int `koanf:"burst_size" validate:"gt=0"`
}

func defaults() *Config {
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  64 << 20,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  time.Hour,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			SamplingRate: 1.0,
			BatchTimeout: 5 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 10,
				BurstSize:         20,
			},
		},
		Analysis: analysis.DefaultConfig(),
	}
}

// Load builds the effective configuration. An empty path falls back to
// FRAUDGRAPH_CONFIG, then configs/config.yaml; only an explicitly named
// file is required to exist. Environment keys use double underscores as
// section separators, e.g. FRAUDGRAPH_SERVER__PORT or
// FRAUDGRAPH_ANALYSIS__MIN_CYCLE_LENGTH, so key names may themselves
// contain underscores.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	explicit := path != "" || os.Getenv(envPrefix+"CONFIG") != ""
	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path == "" {
		path = defaultFilePath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints plus the cross-field rules the
// tag syntax cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Analysis.MaxCycleLength < c.Analysis.MinCycleLength {
		return fmt.Errorf("invalid configuration: max_cycle_length %d below min_cycle_length %d",
			c.Analysis.MaxCycleLength, c.Analysis.MinCycleLength)
	}
	if c.Security.AuthEnabled && c.Security.JWTSecret == "" {
		return fmt.Errorf("invalid configuration: auth enabled without jwt_secret")
	}
	return nil
}
