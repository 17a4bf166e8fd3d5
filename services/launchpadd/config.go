package launchpadd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config captures the runtime configuration for launchpadd.
type Config struct {
	ListenAddress string           `yaml:"listen"`
	DataDir       string           `yaml:"data_dir"`
	ModuleConfig  string           `yaml:"module_config"`
	Environment   string           `yaml:"environment"`
	LogLevel      string           `yaml:"log_level"`
	ReadTimeout   Duration         `yaml:"read_timeout"`
	WriteTimeout  Duration         `yaml:"write_timeout"`
	Auth          AuthConfig       `yaml:"auth"`
	RateLimits    RateLimitConfig  `yaml:"rate_limits"`
	Telemetry     TelemetryConfig  `yaml:"telemetry"`
	EventIndex    EventIndexConfig `yaml:"event_index"`
}

// AuthConfig controls bearer token verification.
type AuthConfig struct {
	Enabled    bool     `yaml:"enabled"`
	HMACSecret string   `yaml:"hmac_secret"`
	SecretFile string   `yaml:"hmac_secret_file"`
	Issuer     string   `yaml:"issuer"`
	Audience   string   `yaml:"audience"`
	ClockSkew  Duration `yaml:"clock_skew"`
}

// RateLimitConfig bounds mutating requests per caller.
type RateLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

// TelemetryConfig configures the OTLP exporters.
type TelemetryConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	Headers     string  `yaml:"headers"`
	Traces      bool    `yaml:"traces"`
	Metrics     bool    `yaml:"metrics"`
	SampleRatio float64 `yaml:"sample_ratio"`
	LogRequests bool    `yaml:"log_requests"`
}

// EventIndexConfig selects the SQLite database holding committed events.
type EventIndexConfig struct {
	DSN string `yaml:"dsn"`
}

// envOverrides mirrors the settings operators commonly override per
// deployment. Unset variables leave the file values untouched.
type envOverrides struct {
	ListenAddress *string        `env:"LISTEN"`
	DataDir       *string        `env:"DATA_DIR"`
	ModuleConfig  *string        `env:"MODULE_CONFIG"`
	Environment   *string        `env:"ENV"`
	LogLevel      *string        `env:"LOG_LEVEL"`
	AuthEnabled   *bool          `env:"AUTH_ENABLED"`
	HMACSecret    *string        `env:"JWT_SECRET"`
	Issuer        *string        `env:"JWT_ISSUER"`
	Audience      *string        `env:"JWT_AUDIENCE"`
	RatePerMinute *float64       `env:"RATE_PER_MINUTE"`
	RateBurst     *int           `env:"RATE_BURST"`
	OTLPEndpoint  *string        `env:"OTLP_ENDPOINT"`
	OTLPInsecure  *bool          `env:"OTLP_INSECURE"`
	OTLPHeaders   *string        `env:"OTLP_HEADERS"`
	Traces        *bool          `env:"TRACES"`
	Metrics       *bool          `env:"METRICS"`
	EventIndexDSN *string        `env:"EVENT_INDEX_DSN"`
	LogRequests   *bool          `env:"LOG_REQUESTS"`
	ReadTimeout   *time.Duration `env:"READ_TIMEOUT"`
	WriteTimeout  *time.Duration `env:"WRITE_TIMEOUT"`
}

// EnvPrefix namespaces every environment override.
const EnvPrefix = "LAUNCHPAD_"

// DefaultConfig returns the settings used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		ListenAddress: ":8545",
		DataDir:       "./data/launchpad",
		ModuleConfig:  "./launchpad.toml",
		LogLevel:      "info",
		ReadTimeout:   Duration{15 * time.Second},
		WriteTimeout:  Duration{15 * time.Second},
		Auth: AuthConfig{
			Enabled:   true,
			Issuer:    "launchpad",
			ClockSkew: Duration{2 * time.Minute},
		},
		RateLimits: RateLimitConfig{RequestsPerMinute: 120, Burst: 20},
		EventIndex: EventIndexConfig{DSN: "file:./data/launchpad/events.db"},
	}
}

// LoadConfig reads path (when non-empty) over the defaults, applies
// LAUNCHPAD_* environment overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.resolveSecret(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var ov envOverrides
	if err := env.ParseWithOptions(&ov, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	setString(&c.ListenAddress, ov.ListenAddress)
	setString(&c.DataDir, ov.DataDir)
	setString(&c.ModuleConfig, ov.ModuleConfig)
	setString(&c.Environment, ov.Environment)
	setString(&c.LogLevel, ov.LogLevel)
	setString(&c.Auth.HMACSecret, ov.HMACSecret)
	setString(&c.Auth.Issuer, ov.Issuer)
	setString(&c.Auth.Audience, ov.Audience)
	setString(&c.Telemetry.Endpoint, ov.OTLPEndpoint)
	setString(&c.Telemetry.Headers, ov.OTLPHeaders)
	setString(&c.EventIndex.DSN, ov.EventIndexDSN)
	if ov.AuthEnabled != nil {
		c.Auth.Enabled = *ov.AuthEnabled
	}
	if ov.RatePerMinute != nil {
		c.RateLimits.RequestsPerMinute = *ov.RatePerMinute
	}
	if ov.RateBurst != nil {
		c.RateLimits.Burst = *ov.RateBurst
	}
	if ov.OTLPInsecure != nil {
		c.Telemetry.Insecure = *ov.OTLPInsecure
	}
	if ov.Traces != nil {
		c.Telemetry.Traces = *ov.Traces
	}
	if ov.Metrics != nil {
		c.Telemetry.Metrics = *ov.Metrics
	}
	if ov.LogRequests != nil {
		c.Telemetry.LogRequests = *ov.LogRequests
	}
	if ov.ReadTimeout != nil {
		c.ReadTimeout = Duration{*ov.ReadTimeout}
	}
	if ov.WriteTimeout != nil {
		c.WriteTimeout = Duration{*ov.WriteTimeout}
	}
	return nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func (c *Config) resolveSecret() error {
	if strings.TrimSpace(c.Auth.HMACSecret) != "" || strings.TrimSpace(c.Auth.SecretFile) == "" {
		return nil
	}
	data, err := os.ReadFile(c.Auth.SecretFile)
	if err != nil {
		return fmt.Errorf("read hmac secret: %w", err)
	}
	c.Auth.HMACSecret = strings.TrimSpace(string(data))
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return errors.New("listen address required")
	}
	if strings.TrimSpace(c.ModuleConfig) == "" {
		return errors.New("module_config required")
	}
	if c.Auth.Enabled && len(strings.TrimSpace(c.Auth.HMACSecret)) < 16 {
		return errors.New("auth.hmac_secret must be at least 16 characters when auth is enabled")
	}
	if c.RateLimits.RequestsPerMinute < 0 || c.RateLimits.Burst < 0 {
		return errors.New("rate_limits must not be negative")
	}
	if c.ReadTimeout.Duration < 0 || c.WriteTimeout.Duration < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return errors.New("telemetry.sample_ratio must be within [0,1]")
	}
	return nil
}
