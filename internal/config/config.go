// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env`
// file when present), loads them into structured Go types and
// validates that required values are present so they can be reused
// across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (observability, reports).
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable carries.
const EnvPrefix = "FEEDBACK_"

// ServiceName is forced onto the observability block regardless of what
// the environment says, so logs and traces always agree on it.
const ServiceName = "feedback-store"

/*
	Keys are normalized by trimming the FEEDBACK_ prefix, lowercasing, and
	turning a double underscore into koanf's "." nesting delimiter:

	  FEEDBACK_DATABASE__MAX_OPEN_CONNS -> database.max_open_conns
	  FEEDBACK_REPORTS__RECIPIENTS      -> reports.recipients
*/

// Config is the root configuration object for the application.
//
// Observability and Reports are pointers because they are optional.
// If not provided, defaults are injected by LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Store         StoreConfig          `koanf:"store"`
	Reports       *ReportsConfig       `koanf:"reports"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// DSN builds a postgres URL from the connection parameters.
// User and password are escaped as userinfo and IPv6 hosts are bracketed.
func (d DatabaseConfig) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return dsn.String()
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// IntegrationConfig holds credentials for third-party providers.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// StoreConfig tunes the feedback store.
//
// ConsistentCommentFilter switches the listing query to the same
// comment-presence predicate as the counting query. It is off by default
// so listings and totals behave exactly as the portlet always did.
type StoreConfig struct {
	ConsistentCommentFilter bool `koanf:"consistent_comment_filter"`
}

// ReportsConfig configures the scheduled feedback digest.
type ReportsConfig struct {
	DigestEnabled bool          `koanf:"digest_enabled"`
	DigestCron    string        `koanf:"digest_cron" validate:"required_if=DigestEnabled true"`
	DigestWindow  time.Duration `koanf:"digest_window" validate:"min=1h"`
	Recipients    []string      `koanf:"recipients" validate:"required_if=DigestEnabled true,dive,email"`
}

// DefaultReportsConfig returns a disabled daily digest over the last 24 hours.
func DefaultReportsConfig() *ReportsConfig {
	return &ReportsConfig{
		DigestEnabled: false,
		DigestCron:    "0 7 * * *",
		DigestWindow:  24 * time.Hour,
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, applies defaults and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	// koanf leaves comma separated env values as a single string.
	mainConfig.Server.CORSAllowedOrigins = splitList(mainConfig.Server.CORSAllowedOrigins)

	if mainConfig.Reports == nil {
		mainConfig.Reports = DefaultReportsConfig()
	}
	mainConfig.Reports.Recipients = splitList(mainConfig.Reports.Recipients)
	if mainConfig.Reports.DigestWindow == 0 {
		mainConfig.Reports.DigestWindow = DefaultReportsConfig().DigestWindow
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env
	mainConfig.Observability.HealthChecks.Checks = splitList(mainConfig.Observability.HealthChecks.Checks)

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
