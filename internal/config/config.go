// Package config loads the BFF configuration from the environment, an
// optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Upstream
	FinHawkAPIURL string
	HTTPTimeout   time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL time.Duration

	// Observability
	TracingEnabled bool
	OTLPEndpoint   string

	// Auth. Empty secret means tokens are forwarded without local verification.
	JWTSecret string

	// Dashboard
	Timezone      string
	Location      *time.Location
	TimelineDays  int
	MonthsBack    int
	MonthsForward int
}

// LoadDotEnv reads a .env file into the process environment.
// Existing env vars take precedence over the file.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	v.SetDefault("finhawk_api_url", "http://localhost:3000")
	v.SetDefault("http_timeout", 10*time.Second)

	v.SetDefault("max_retries", 3)
	v.SetDefault("initial_backoff", 100*time.Millisecond)
	v.SetDefault("max_concurrency", 50)

	v.SetDefault("cache_ttl", time.Minute)

	v.SetDefault("tracing_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "localhost:4317")

	v.SetDefault("jwt_secret", "")

	v.SetDefault("timezone", "America/Sao_Paulo")
	v.SetDefault("timeline_days", 7)
	v.SetDefault("months_back", 6)
	v.SetDefault("months_forward", 5)
}

// Load reads configuration. Environment variables win over the optional
// config file (yaml, json or toml, picked by extension), which wins over
// the defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Port:     v.GetInt("port"),
		LogLevel: strings.ToLower(v.GetString("log_level")),

		FinHawkAPIURL: strings.TrimRight(v.GetString("finhawk_api_url"), "/"),
		HTTPTimeout:   v.GetDuration("http_timeout"),

		MaxRetries:     v.GetInt("max_retries"),
		InitialBackoff: v.GetDuration("initial_backoff"),
		MaxConcurrency: v.GetInt("max_concurrency"),

		CacheTTL: v.GetDuration("cache_ttl"),

		TracingEnabled: v.GetBool("tracing_enabled"),
		OTLPEndpoint:   v.GetString("otel_exporter_otlp_endpoint"),

		JWTSecret: v.GetString("jwt_secret"),

		Timezone:      v.GetString("timezone"),
		TimelineDays:  v.GetInt("timeline_days"),
		MonthsBack:    v.GetInt("months_back"),
		MonthsForward: v.GetInt("months_forward"),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.FinHawkAPIURL == "" {
		errs = append(errs, errors.New("FINHAWK_API_URL is required"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("MAX_RETRIES must be >= 0: %d", c.MaxRetries))
	}
	if c.TimelineDays < 1 || c.TimelineDays > 31 {
		errs = append(errs, fmt.Errorf("TIMELINE_DAYS must be within 1..31: %d", c.TimelineDays))
	}
	if c.MonthsBack < 0 || c.MonthsBack > 24 {
		errs = append(errs, fmt.Errorf("MONTHS_BACK must be within 0..24: %d", c.MonthsBack))
	}
	if c.MonthsForward < 0 || c.MonthsForward > 24 {
		errs = append(errs, fmt.Errorf("MONTHS_FORWARD must be within 0..24: %d", c.MonthsForward))
	}
	return errors.Join(errs...)
}

// TracingEndpoint returns the OTLP endpoint, or "" when tracing is off.
func (c *Config) TracingEndpoint() string {
	if !c.TracingEnabled {
		return ""
	}
	return c.OTLPEndpoint
}
